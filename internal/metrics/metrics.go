package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poller Metrics
var (
	// PollCyclesTotal tracks completed poll cycles by service and status
	PollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Total poll cycles by service (twitch/youtube) and status (ok/error)",
		},
		[]string{"service", "status"},
	)

	// PollCycleDuration tracks poll cycle latency in seconds
	PollCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poll_cycle_duration_seconds",
			Help:    "Poll cycle duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service"},
	)

	// AnnouncementsTotal tracks Discord announcements by service and kind
	AnnouncementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcements_total",
			Help: "Total Discord announcements by service and kind (live/ended/upload)",
		},
		[]string{"service", "kind"},
	)

	// ExternalAPIErrors tracks upstream API errors by service
	ExternalAPIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_api_errors_total",
			Help: "Total upstream API errors by service (twitch/youtube/discord/openai)",
		},
		[]string{"service"},
	)
)

// Summarizer Metrics
var (
	// SummaryRequestsTotal tracks summary requests by result
	SummaryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_requests_total",
			Help: "Total chat summary requests by result (ok/refused/not_premium/error)",
		},
		[]string{"result"},
	)

	// SummaryDuration tracks end-to-end summary latency
	SummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_duration_seconds",
			Help:    "End-to-end chat summary duration in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 45, 90},
		},
	)

	// SummaryMessagesCollected tracks how many messages fed each summary
	SummaryMessagesCollected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_messages_collected",
			Help:    "Number of chat messages collected per summary request",
			Buckets: []float64{10, 25, 50, 100, 200, 350, 500},
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)

// Feature Flag Metrics
var (
	// FeatureFlagRefreshes tracks flag cache refreshes by trigger
	FeatureFlagRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_flag_refreshes_total",
			Help: "Total feature flag cache refreshes by trigger (interval/pubsub/startup)",
		},
		[]string{"trigger"},
	)

	// FeatureFlagGuilds tracks how many guilds have at least one enabled flag
	FeatureFlagGuilds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_flag_guilds",
			Help: "Number of guilds with at least one enabled feature flag",
		},
	)
)

// Panel Metrics
var (
	// PanelLoginsTotal tracks panel OAuth logins by result
	PanelLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_logins_total",
			Help: "Total panel OAuth logins by result (success/denied/error)",
		},
		[]string{"result"},
	)

	// PanelFlagToggles tracks feature flag toggles made through the panel
	PanelFlagToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_flag_toggles_total",
			Help: "Total feature flag toggles by feature key",
		},
		[]string{"feature"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
