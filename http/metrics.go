package http

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters the server feeds. Each server owns its own
// registry, so constructing several servers in one process (tests do this)
// never trips duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	SuccessfulRequests *prometheus.CounterVec
	BadRequests *prometheus.CounterVec
	WarblesPosted *prometheus.CounterVec
	FollowRequests *prometheus.CounterVec
	UnfollowRequests *prometheus.CounterVec
	LikeToggles *prometheus.CounterVec
}

func InitMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_request",
				Help: "Total number of successful (non-4xx/5xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unsuccessful_request",
				Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
			},
			[]string{"path"},
		),
		WarblesPosted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_message",
				Help: "Total number of successfully posted warbles",
			},
			[]string{"path"},
		),
		FollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_follows",
				Help: "Total number of successful follow requests",
			},
			[]string{"path"},
		),
		UnfollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_unfollows",
				Help: "Total number of successful unfollow requests",
			},
			[]string{"path"},
		),
		LikeToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_like_toggles",
				Help: "Total number of successful like toggles",
			},
			[]string{"path"},
		),
	}

	m.registry.MustRegister(
		m.SuccessfulRequests,
		m.BadRequests,
		m.WarblesPosted,
		m.FollowRequests,
		m.UnfollowRequests,
		m.LikeToggles,
	)

	return m
}
