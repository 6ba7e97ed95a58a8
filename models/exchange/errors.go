package exchange

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormatInvalid aborts an import: a required sheet or column is
	// missing entirely. The working set is left untouched.
	ErrFormatInvalid = errors.New("unrecognized workbook format")

	// ErrVersionDeclined aborts an import: the workbook declares a different
	// format version and the caller declined to proceed.
	ErrVersionDeclined = errors.New("format version mismatch declined")
)

// RowFailure marks one data row the decoder could not turn into a record.
// Row numbers are 1-based as shown in the spreadsheet application.
type RowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult is the consolidated summary returned to the caller after an
// import. Per-row failures and non-fatal warnings never abort the run.
type ImportResult struct {
	CorrelationId string       `json:"correlation_id"`
	ImportedCount int          `json:"imported_count"`
	ReportCount   int          `json:"report_count"`
	Skipped       []RowFailure `json:"skipped"`
	Warnings      []string     `json:"warnings"`
}

const maxListedFailures = 10

// Summary renders the one-line user-facing outcome: counts plus the first
// ten failing row numbers with a "+N more" suffix beyond that.
func (r *ImportResult) Summary() string {
	if len(r.Skipped) == 0 {
		return fmt.Sprintf("%d boards imported", r.ImportedCount)
	}

	listed := r.Skipped
	more := 0
	if len(listed) > maxListedFailures {
		more = len(listed) - maxListedFailures
		listed = listed[:maxListedFailures]
	}
	rows := make([]string, len(listed))
	for i, failure := range listed {
		rows[i] = fmt.Sprint(failure.Row)
	}
	suffix := ""
	if more > 0 {
		suffix = fmt.Sprintf(" +%d more", more)
	}
	return fmt.Sprintf("%d boards imported, %d rows skipped (rows %s%s)",
		r.ImportedCount, len(r.Skipped), strings.Join(rows, ", "), suffix)
}
