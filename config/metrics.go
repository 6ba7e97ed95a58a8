package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine-level counters exposed on /metrics.
var (
	ImportRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paneltrack",
		Name:      "import_runs_total",
		Help:      "Spreadsheet import runs by outcome (ok, format_error, version_declined).",
	}, []string{"outcome"})

	ImportedBoardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paneltrack",
		Name:      "imported_boards_total",
		Help:      "Boards successfully decoded and merged from spreadsheets.",
	})

	SkippedRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paneltrack",
		Name:      "skipped_rows_total",
		Help:      "Spreadsheet rows skipped by the row decoder.",
	})

	ExportRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paneltrack",
		Name:      "export_runs_total",
		Help:      "Workbook exports produced.",
	})

	ImportDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "paneltrack",
		Name:      "import_duration_seconds",
		Help:      "Wall time of a full import transformation.",
		Buckets:   prometheus.DefBuckets,
	})
)
