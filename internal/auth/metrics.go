package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_verifications_total",
			Help: "Total number of token verification attempts by type and status.",
		},
		[]string{"type", "status"},
	)

	publicRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_public_requests_total",
		Help: "Total number of requests allowed through on public paths.",
	})
)
