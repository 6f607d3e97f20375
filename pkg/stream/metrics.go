package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	streamsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_streams_started_total",
		Help: "Number of streaming requests opened.",
	})

	streamsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_streams_completed_total",
		Help: "Number of streams that reached the terminal sentinel.",
	})

	streamsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_streams_cancelled_total",
		Help: "Number of streams cancelled by the client.",
	})

	streamsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_streams_failed_total",
		Help: "Number of streams terminated by a transport error.",
	})

	fragmentsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_stream_fragments_received_total",
		Help: "Number of token fragments received across all streams.",
	})

	eventsIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sage_stream_events_ignored_total",
		Help: "Number of unrecognized stream payloads dropped.",
	})
)
