package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_stories_created_total",
		Help: "Total number of created stories.",
	})

	branchWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_branch_writes_total",
			Help: "Total number of branch writes by operation and status.",
		},
		[]string{"operation", "status"},
	)

	statusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_status_transitions_total",
			Help: "Total number of story status changes by target status.",
		},
		[]string{"to"},
	)

	readerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_reader_transitions_total",
			Help: "Total number of reader navigation results by resulting state.",
		},
		[]string{"state"},
	)
)

func observeBranchWrite(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	branchWritesTotal.WithLabelValues(operation, status).Inc()
}
