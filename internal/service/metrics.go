package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contributionsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_contributions_submitted_total",
		Help: "Total number of accepted contributions",
	})

	contributionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_contributions_rejected_total",
		Help: "Total number of rejected contribution submissions by reason",
	}, []string{"reason"})

	contributionsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_contributions_deleted_total",
		Help: "Total number of deleted contributions",
	})

	purchaseChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_purchase_changes_total",
		Help: "Total number of gift purchase state changes",
	}, []string{"action"})

	summaryCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_summary_cache_lookups_total",
		Help: "Summary cache lookups by result",
	}, []string{"result"})
)
