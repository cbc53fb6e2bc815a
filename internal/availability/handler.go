package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/doctors"
	"github.com/careops/scheduling-platform/internal/tenancy"
	"github.com/careops/scheduling-platform/pkg/logging"
)

// Handler provides HTTP endpoints for availability queries.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates an availability HTTP handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes returns a chi router with availability routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/slots", h.GetSlots)
	r.Get("/month", h.GetMonth)
	return r
}

// GetSlots returns the open slots for a date.
// GET /api/availability/slots?date=2026-09-07&doctor_id=... | &hospital_id=...&specialty=...
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		http.Error(w, `{"error":"date required, format YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	sel, err := selectorFromRequest(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), date, sel)
	if err != nil {
		h.writeError(w, r, err, "failed to list slots")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"slots": slots})
}

// GetMonth returns the per-day classification for a month.
// GET /api/availability/month?year=2026&month=9&doctor_id=... | &hospital_id=...
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 1970 || year > 9999 {
		http.Error(w, `{"error":"valid year required"}`, http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, `{"error":"month must be 1-12"}`, http.StatusBadRequest)
		return
	}
	sel, err := selectorFromRequest(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	days, err := h.svc.MonthlyAvailability(r.Context(), year, time.Month(month), sel)
	if err != nil {
		h.writeError(w, r, err, "failed to compute monthly availability")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"days": days})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, doctors.ErrNotFound):
		http.Error(w, `{"error":"doctor not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrInvalidSelector):
		http.Error(w, `{"error":"doctor_id or hospital_id required"}`, http.StatusBadRequest)
	default:
		h.logger.Error(msg, "path", r.URL.Path, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
	}
}

// selectorFromRequest builds the candidate selector from query params,
// falling back to the hospital scope on the request context.
func selectorFromRequest(r *http.Request) (Selector, error) {
	q := r.URL.Query()
	var sel Selector

	if raw := strings.TrimSpace(q.Get("doctor_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return sel, errors.New("invalid doctor_id")
		}
		sel.DoctorID = &id
		return sel, nil
	}
	if raw := strings.TrimSpace(q.Get("hospital_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return sel, errors.New("invalid hospital_id")
		}
		sel.HospitalID = &id
	} else if id, ok := tenancy.HospitalIDFromContext(r.Context()); ok {
		sel.HospitalID = &id
	}
	sel.Specialty = strings.TrimSpace(q.Get("specialty"))
	return sel, nil
}
