package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/tenancy"
)

func TestHospitalScopeSetsContext(t *testing.T) {
	hospital := uuid.New()
	var got uuid.UUID
	var ok bool
	handler := HospitalScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = tenancy.HospitalIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	req.Header.Set(HospitalHeader, hospital.String())
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("expected hospital id in context")
	}
	if got != hospital {
		t.Fatalf("got %s, want %s", got, hospital)
	}
}

func TestHospitalScopeMissingHeaderPassesThrough(t *testing.T) {
	called := false
	handler := HospitalScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := tenancy.HospitalIDFromContext(r.Context()); ok {
			t.Fatal("expected no hospital id in context")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	if !called {
		t.Fatal("expected handler to be called")
	}
}

func TestHospitalScopeRejectsMalformedHeader(t *testing.T) {
	handler := HospitalScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	req.Header.Set(HospitalHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
