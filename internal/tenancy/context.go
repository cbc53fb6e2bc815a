package tenancy

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const hospitalKey ctxKey = "careops.hospital_id"

// WithHospitalID stores the hospital scope in context.
func WithHospitalID(ctx context.Context, hospitalID uuid.UUID) context.Context {
	return context.WithValue(ctx, hospitalKey, hospitalID)
}

// HospitalIDFromContext extracts the hospital scope if present.
func HospitalIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(hospitalKey)
	if val == nil {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
