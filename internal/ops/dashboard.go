package ops

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/careops/scheduling-platform/internal/reminders"
	"github.com/careops/scheduling-platform/pkg/logging"
)

const (
	bookingsMetric  = "careops_scheduling_bookings_total"
	slotQueryMetric = "careops_scheduling_slot_query_seconds"
)

type reminderStats interface {
	GetStats(ctx context.Context) (*reminders.Stats, error)
}

// LatencySnapshot summarizes a latency histogram for the dashboard.
type LatencySnapshot struct {
	Total int64   `json:"total"`
	P90Ms float64 `json:"p90_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// Dashboard is the operational snapshot served to admins: booking outcomes
// and availability-query latency from the in-process metrics, reminder
// lifecycle counts from the database.
type Dashboard struct {
	BookingsByOutcome map[string]int64 `json:"bookings_by_outcome"`
	SlotQueryLatency  LatencySnapshot  `json:"slot_query_latency"`
	Reminders         *reminders.Stats `json:"reminders,omitempty"`
}

// DashboardHandler serves the scheduling operations dashboard.
type DashboardHandler struct {
	stats    reminderStats
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewDashboardHandler creates the handler. A nil gatherer falls back to the
// process default; a nil stats source leaves the reminder section empty.
func NewDashboardHandler(stats reminderStats, gatherer prometheus.Gatherer, logger *logging.Logger) *DashboardHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{stats: stats, gatherer: gatherer, logger: logger}
}

// Routes returns a chi router with dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.GetDashboard)
	return r
}

// GetDashboard returns the current operational snapshot.
// GET /ops/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	resp := Dashboard{
		BookingsByOutcome: snapshotBookings(h.gatherer),
		SlotQueryLatency:  snapshotLatency(h.gatherer),
	}

	if h.stats != nil {
		stats, err := h.stats.GetStats(r.Context())
		if err != nil {
			h.logger.Error("failed to load reminder stats", "error", err)
		} else {
			resp.Reminders = stats
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func snapshotBookings(gatherer prometheus.Gatherer) map[string]int64 {
	out := make(map[string]int64)
	family := findFamily(gatherer, bookingsMetric)
	if family == nil {
		return out
	}
	for _, metric := range family.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		outcome := labelValue(metric, "outcome")
		if outcome == "" {
			continue
		}
		out[outcome] += int64(metric.GetCounter().GetValue())
	}
	return out
}

func snapshotLatency(gatherer prometheus.Gatherer) LatencySnapshot {
	family := findFamily(gatherer, slotQueryMetric)
	if family == nil {
		return LatencySnapshot{}
	}

	// Aggregate across query kinds.
	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64
	for _, metric := range family.Metric {
		if metric == nil {
			continue
		}
		hist := metric.GetHistogram()
		if hist == nil {
			continue
		}
		sampleCount += hist.GetSampleCount()
		for _, b := range hist.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return LatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	return LatencySnapshot{
		Total: int64(sampleCount),
		P90Ms: histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper) * 1000.0,
		P95Ms: histogramQuantile(0.95, sampleCount, uppers, cumulativeByUpper) * 1000.0,
	}
}

func findFamily(gatherer prometheus.Gatherer, name string) *dto.MetricFamily {
	mfs, err := gatherer.Gather()
	if err != nil {
		return nil
	}
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}

		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}

		fraction := (target - prevCum) / bucketCount
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		return prevUpper + fraction*(upper-prevUpper)
	}
	return uppers[len(uppers)-1]
}
