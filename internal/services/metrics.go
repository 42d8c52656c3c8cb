// Package services – import metrics
//
// Prometheus counters for the import pipeline. Labels stay low-cardinality:
// source and game are small closed sets, and failures are labelled by error
// kind, not message.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// importedRecords counts rows actually added to the history log.
	importedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gacha_import_records_total",
			Help: "Total number of gacha records added by imports.",
		},
		[]string{"source", "game"},
	)

	// duplicateRecords counts rows rejected by the (wish_id, game) unique
	// constraint, i.e. reimports of already known pulls.
	duplicateRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gacha_import_duplicates_total",
			Help: "Total number of duplicate gacha records skipped by imports.",
		},
		[]string{"source", "game"},
	)

	// importFailures counts failed imports by error kind.
	importFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gacha_import_failures_total",
			Help: "Total number of failed gacha imports.",
		},
		[]string{"source", "kind"},
	)
)

func init() {
	prometheus.MustRegister(importedRecords, duplicateRecords, importFailures)
}
