// Package metrics exposes Prometheus counters for the download pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsReceived counts /download invocations by validation outcome.
	CommandsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchclip_commands_total",
		Help: "Download commands received, by outcome of the inbound checks.",
	}, []string{"outcome"}) // accepted, invalid_url, rate_limited, queue_full

	// Resolutions counts strategy attempts by strategy and outcome.
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchclip_resolutions_total",
		Help: "Download strategy attempts, by strategy and outcome.",
	}, []string{"strategy", "outcome"}) // success, no_result, size_exceeded, empty

	// BytesDelivered totals the sizes of videos uploaded back to the channel.
	BytesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchclip_bytes_delivered_total",
		Help: "Total bytes of video files delivered to requesters.",
	})
)
