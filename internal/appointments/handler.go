package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/careops/scheduling-platform/internal/doctors"
	"github.com/careops/scheduling-platform/internal/tenancy"
	"github.com/careops/scheduling-platform/pkg/logging"
)

// Handler provides HTTP endpoints for booking appointments.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates an appointments HTTP handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes returns a chi router with appointment routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateAppointment)
	r.Get("/{appointmentID}", h.GetAppointment)
	r.Post("/{appointmentID}/cancel", h.CancelAppointment)
	return r
}

type createAppointmentRequest struct {
	PatientID  string `json:"patient_id"`
	DoctorID   string `json:"doctor_id,omitempty"`
	HospitalID string `json:"hospital_id,omitempty"`
	Specialty  string `json:"specialty,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Reason     string `json:"reason,omitempty"`
}

// CreateAppointment books a slot.
// POST /api/appointments
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	patientID, err := uuid.Parse(strings.TrimSpace(req.PatientID))
	if err != nil {
		http.Error(w, `{"error":"valid patient_id required"}`, http.StatusBadRequest)
		return
	}
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, `{"error":"date required, format YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	in := CreateInput{
		PatientID: patientID,
		Specialty: strings.TrimSpace(req.Specialty),
		Date:      date,
		Time:      strings.TrimSpace(req.Time),
		Reason:    strings.TrimSpace(req.Reason),
	}
	if raw := strings.TrimSpace(req.DoctorID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, `{"error":"invalid doctor_id"}`, http.StatusBadRequest)
			return
		}
		in.DoctorID = &id
	}
	if raw := strings.TrimSpace(req.HospitalID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, `{"error":"invalid hospital_id"}`, http.StatusBadRequest)
			return
		}
		in.HospitalID = &id
	} else if id, ok := tenancy.HospitalIDFromContext(r.Context()); ok {
		in.HospitalID = &id
	}

	appt, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err, "failed to create appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appt)
}

// GetAppointment loads one appointment.
// GET /api/appointments/{appointmentID}
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error":"invalid appointment id"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "failed to load appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(appt)
}

// CancelAppointment cancels a booking and its pending reminder.
// POST /api/appointments/{appointmentID}/cancel
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error":"invalid appointment id"}`, http.StatusBadRequest)
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		h.writeError(w, r, err, "failed to cancel appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error":"appointment not found"}`, http.StatusNotFound)
	case errors.Is(err, doctors.ErrNotFound):
		http.Error(w, `{"error":"doctor not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrSlotTaken):
		http.Error(w, `{"error":"slot already booked"}`, http.StatusConflict)
	case errors.Is(err, ErrDoctorUnavailable):
		http.Error(w, `{"error":"doctor not accepting appointments"}`, http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNoAvailability):
		http.Error(w, `{"error":"no availability for the requested slot"}`, http.StatusUnprocessableEntity)
	default:
		h.logger.Error(msg, "path", r.URL.Path, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
	}
}
