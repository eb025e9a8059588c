package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_loader_transitions_total",
			Help: "State transitions committed by resource loaders",
		},
		[]string{"loader", "state"},
	)

	staleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_loader_stale_total",
			Help: "Fetch results dropped because a newer request was issued",
		},
		[]string{"loader"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_loader_fetch_duration_seconds",
			Help:    "Duration of resource fetches by outcome",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"loader", "outcome"},
	)
)
