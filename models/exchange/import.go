package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"bitbucket.org/mmdatafocus/paneltrack_backend/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportOptions configures a single import run.
type ImportOptions struct {
	// ConfirmVersionMismatch decides whether to continue when the document
	// declares a different format version. A nil func declines.
	ConfirmVersionMismatch func(found string, supported string) bool
	PhotoStore             PhotoStore
	FileName               string
	Actor                  string
}

// ImportOutcome carries the merged working sets plus the run summary. The
// caller decides whether to persist Records and Reports.
type ImportOutcome struct {
	Records []*models.InspectionRecord
	Reports []*models.ReportRecord
	Result  *ImportResult
}

// ImportWorkbook runs the full import transformation against an opened
// document: version gate, header resolution, row decoding, reconciliation
// merge, embedded photo binding and report recovery. The existing sets are
// never mutated; the outcome holds fresh merged copies.
func ImportWorkbook(ctx context.Context, f *excelize.File, existingRecords []*models.InspectionRecord, existingReports []*models.ReportRecord, opts ImportOptions) (*ImportOutcome, error) {
	logger := config.GetLogger()
	startedAt := time.Now()

	confirm := opts.ConfirmVersionMismatch
	if confirm == nil {
		confirm = func(string, string) bool { return false }
	}
	if err := checkFormatVersion(f, confirm); err != nil {
		if errors.Is(err, ErrVersionDeclined) {
			config.ImportRunsTotal.WithLabelValues("version_declined").Inc()
		} else {
			config.ImportRunsTotal.WithLabelValues("format_error").Inc()
		}
		return nil, err
	}

	boardSheet := findSheet(f, boardSheetAliases)
	if boardSheet == "" {
		config.ImportRunsTotal.WithLabelValues("format_error").Inc()
		return nil, fmt.Errorf("%w: no board list sheet found", ErrFormatInvalid)
	}

	rows, err := f.GetRows(boardSheet)
	if err != nil {
		config.ImportRunsTotal.WithLabelValues("format_error").Inc()
		return nil, fmt.Errorf("%w: reading sheet %s: %v", ErrFormatInvalid, boardSheet, err)
	}
	if len(rows) == 0 {
		config.ImportRunsTotal.WithLabelValues("format_error").Inc()
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrFormatInvalid, boardSheet)
	}

	cols, warnings, err := resolveColumns(rows[0], boardColumnSpecs)
	if err != nil {
		config.ImportRunsTotal.WithLabelValues("format_error").Inc()
		return nil, err
	}

	decoded, failures := decodeBoardRows(rows, cols)
	merged := MergeRecords(existingRecords, decoded)

	if photoWarnings := bindEmbeddedPhotos(ctx, f, merged, opts.PhotoStore); len(photoWarnings) > 0 {
		warnings = append(warnings, photoWarnings...)
	}

	importedReports, reportWarnings := decodeReports(f, merged)
	warnings = append(warnings, reportWarnings...)
	mergedReports := MergeReports(existingReports, importedReports)

	correlationId, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || correlationId == "" {
		correlationId = uuid.New().String()
	}

	result := &ImportResult{
		CorrelationId: correlationId,
		ImportedCount: len(decoded),
		ReportCount:   len(importedReports),
		Skipped:       failures,
		Warnings:      warnings,
	}

	config.ImportRunsTotal.WithLabelValues("ok").Inc()
	config.ImportedBoardsTotal.Add(float64(len(decoded)))
	config.SkippedRowsTotal.Add(float64(len(failures)))
	config.ImportDurationSeconds.Observe(time.Since(startedAt).Seconds())

	logger.WithField("correlationId", result.CorrelationId).
		WithField("fileName", opts.FileName).
		WithField("actor", opts.Actor).
		Info(result.Summary())

	return &ImportOutcome{
		Records: merged,
		Reports: mergedReports,
		Result:  result,
	}, nil
}

// RecordImportRun persists the audit row and publishes the audit event.
func RecordImportRun(ctx context.Context, opts ImportOptions, result *ImportResult) {
	logger := config.GetLogger()

	actor := opts.Actor
	if actor == "" {
		if userId, ok := utils.GetUserIdFromContext(ctx); ok {
			actor = strconv.Itoa(userId)
		}
	}

	run := &models.ImportRun{
		CorrelationId: result.CorrelationId,
		Actor:         actor,
		FileName:      opts.FileName,
		ImportedCount: result.ImportedCount,
		SkippedCount:  len(result.Skipped),
		ReportCount:   result.ReportCount,
	}
	if err := run.Store(ctx); err != nil {
		config.LogError(logger, "exchange", "RecordImportRun", "storing import run", run, err)
	}

	if err := config.PublishAuditEvent(ctx, &config.AuditEvent{
		Action:        "import",
		CorrelationId: result.CorrelationId,
		Actor:         actor,
		BoardCount:    result.ImportedCount,
		SkippedRows:   len(result.Skipped),
		OccurredAt:    time.Now().UTC(),
	}); err != nil {
		config.LogError(logger, "exchange", "RecordImportRun", "publishing audit event", result.CorrelationId, err)
	}
}
