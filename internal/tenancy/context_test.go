package tenancy

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestHospitalIDRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithHospitalID(context.Background(), id)

	got, ok := HospitalIDFromContext(ctx)
	if !ok {
		t.Fatal("expected hospital id in context")
	}
	if got != id {
		t.Fatalf("got %s, want %s", got, id)
	}
}

func TestHospitalIDMissing(t *testing.T) {
	if _, ok := HospitalIDFromContext(context.Background()); ok {
		t.Fatal("expected no hospital id in empty context")
	}
}

func TestHospitalIDNilIsAbsent(t *testing.T) {
	ctx := WithHospitalID(context.Background(), uuid.Nil)
	if _, ok := HospitalIDFromContext(ctx); ok {
		t.Fatal("nil hospital id should not count as present")
	}
}
