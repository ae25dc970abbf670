package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	XPEventsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "gamification_xp_events_total", Help: "Total XP ledger entries appended"},
	)
	BadgesAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "gamification_badges_awarded_total", Help: "Total badges awarded to profiles"},
	)
	ScoresRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "judging_scores_recorded_total", Help: "Total judge scores created or updated"},
	)
	RankingPasses = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "judging_ranking_passes_total", Help: "Total ranking passes executed"},
	)
	OutboxProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "search_outbox_processed_total", Help: "Total outbox events indexed"},
	)
	OutboxFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "search_outbox_failed_total", Help: "Total outbox events that failed indexing"},
	)
	DLQEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "search_dlq_total", Help: "Total events inserted into the dead-letter table"},
	)
)

func Register() {
	prometheus.MustRegister(
		XPEventsAwarded,
		BadgesAwarded,
		ScoresRecorded,
		RankingPasses,
		OutboxProcessed,
		OutboxFailed,
		DLQEvents,
	)
}
