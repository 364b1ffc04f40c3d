package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ElementsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmdoc",
		Name:      "elements_read_total",
		Help:      "OSM elements read from the input, by kind.",
	}, []string{"kind"})

	DocumentsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmdoc",
		Name:      "documents_written_total",
		Help:      "Normalized documents written to the sink.",
	})

	CorrectionsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmdoc",
		Name:      "corrections_applied_total",
		Help:      "Street names replaced by an approved correction.",
	})

	PhoneFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmdoc",
		Name:      "phone_failures_total",
		Help:      "Phone fields that could not be normalized, by policy.",
	}, []string{"policy"})

	ReferenceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmdoc",
		Name:      "reference_fetches_total",
		Help:      "Downloads of the reference street directory, by result.",
	}, []string{"result"})
)
