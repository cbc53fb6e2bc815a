package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/careops/scheduling-platform/pkg/logging"
)

// SlotHold serializes concurrent booking attempts for the same slot with a
// short-TTL Redis claim (SET NX). It fails races fast; the database's
// partial unique index remains the final arbiter. A nil SlotHold always
// grants the claim.
type SlotHold struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewSlotHold creates a slot hold backed by Redis.
func NewSlotHold(client *redis.Client, ttl time.Duration, logger *logging.Logger) *SlotHold {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotHold{redis: client, ttl: ttl, logger: logger}
}

func slotHoldKey(doctorID uuid.UUID, hospitalID *uuid.UUID, date time.Time, minute int) string {
	hospital := "none"
	if hospitalID != nil {
		hospital = hospitalID.String()
	}
	return fmt.Sprintf("sched:hold:%s:%s:%s:%d", doctorID, hospital, date.Format(time.DateOnly), minute)
}

// Acquire claims the slot. Returns false when another request holds it.
// Redis outages degrade to granting the claim, since the unique index still
// protects correctness.
func (h *SlotHold) Acquire(ctx context.Context, doctorID uuid.UUID, hospitalID *uuid.UUID, date time.Time, minute int) bool {
	if h == nil || h.redis == nil {
		return true
	}
	key := slotHoldKey(doctorID, hospitalID, date, minute)
	ok, err := h.redis.SetNX(ctx, key, "held", h.ttl).Result()
	if err != nil {
		h.logger.Warn("slot hold unavailable, relying on unique index", "error", err)
		return true
	}
	return ok
}

// Release frees the claim early so a failed booking does not block the slot
// for the full TTL.
func (h *SlotHold) Release(ctx context.Context, doctorID uuid.UUID, hospitalID *uuid.UUID, date time.Time, minute int) {
	if h == nil || h.redis == nil {
		return
	}
	key := slotHoldKey(doctorID, hospitalID, date, minute)
	if err := h.redis.Del(ctx, key).Err(); err != nil {
		h.logger.Warn("slot hold release failed", "key", key, "error", err)
	}
}
