// Package metrics exposes prometheus counters for the synchroniser's
// operations. They are process-wide totals; the sync engine keeps its
// own per-run counts for the summary line and does not read them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peoplesync",
		Name:      "users_created_total",
		Help:      "Number of TimeCamp users created.",
	})

	UsersUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peoplesync",
		Name:      "users_updated_total",
		Help:      "Number of TimeCamp users updated.",
	})

	UsersActivated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peoplesync",
		Name:      "users_activated_total",
		Help:      "Number of TimeCamp users re-activated.",
	})

	UsersDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peoplesync",
		Name:      "users_deactivated_total",
		Help:      "Number of TimeCamp users deactivated.",
	})

	UsersSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peoplesync",
		Name:      "users_skipped_total",
		Help:      "Number of users skipped (ignored, manual, or failed).",
	})

	GroupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peoplesync",
		Name:      "groups_created_total",
		Help:      "Number of TimeCamp groups created.",
	})

	HTTPRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peoplesync",
		Name:      "http_retries_total",
		Help:      "Number of retried TimeCamp API requests.",
	})
)
