package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ModerationMetrics records the lifecycle of moderation requests.
type ModerationMetrics struct {
	submitted *prometheus.CounterVec
	decided   *prometheus.CounterVec
	conflicts prometheus.Counter
}

// NewModerationMetrics registers the moderation metrics on the provided registerer.
func NewModerationMetrics(reg prometheus.Registerer) *ModerationMetrics {
	if reg == nil {
		return &ModerationMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_requests_submitted_total",
		Help: "Moderation requests submitted, by request type and origin.",
	}, []string{"type", "origin"})
	decided := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_requests_decided_total",
		Help: "Moderation decisions recorded, by request type and outcome.",
	}, []string{"type", "decision"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_decision_conflicts_total",
		Help: "Decisions rejected because the request was no longer pending.",
	})
	reg.MustRegister(submitted, decided, conflicts)
	return &ModerationMetrics{
		submitted: submitted,
		decided:   decided,
		conflicts: conflicts,
	}
}

// IncSubmitted increments the submission counter for a request type.
// Origin distinguishes seller submissions from system backfills.
func (m *ModerationMetrics) IncSubmitted(requestType, origin string) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.WithLabelValues(normalizeLabel(requestType), normalizeLabel(origin)).Inc()
}

// IncDecided increments the decision counter for a request type and outcome.
func (m *ModerationMetrics) IncDecided(requestType, decision string) {
	if m == nil || m.decided == nil {
		return
	}
	m.decided.WithLabelValues(normalizeLabel(requestType), normalizeLabel(decision)).Inc()
}

// IncConflict counts a decision that lost the race against another moderator.
func (m *ModerationMetrics) IncConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
