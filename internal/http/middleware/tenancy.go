package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/tenancy"
)

// HospitalHeader is the request header naming the hospital a client acts in.
const HospitalHeader = "X-Hospital-Id"

// HospitalScope reads the hospital id header and stores it on the request
// context. Requests without the header pass through unscoped; a malformed id
// is rejected so downstream code never sees a half-parsed scope.
func HospitalScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HospitalHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, `{"error":"invalid `+HospitalHeader+` header"}`, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(tenancy.WithHospitalID(r.Context(), id)))
	})
}
