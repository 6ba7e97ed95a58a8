package exchange

import (
	"context"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"github.com/xuri/excelize/v2"
)

// ExportOptions configures a single export run.
type ExportOptions struct {
	PhotoStore PhotoStore
	// PrunePhotos clears the site-photo reference of every record whose
	// photo was embedded, handing custody of the image to the document.
	PrunePhotos bool
}

// ExportOutcome carries the built workbook plus the post-export record set.
type ExportOutcome struct {
	File *excelize.File
	// Records is the working set after photo pruning; identical clones of
	// the input when pruning is off.
	Records        []*models.InspectionRecord
	EmbeddedPhotos map[string]bool
}

// ExportWorkbook builds the full interchange document from the current
// working set and, when configured, moves embedded site photos out of the
// records so each photo has a single live copy.
func ExportWorkbook(ctx context.Context, records []*models.InspectionRecord, reports []*models.ReportRecord, opts ExportOptions) (*ExportOutcome, error) {
	f, embedded, err := BuildWorkbook(ctx, records, reports, opts.PhotoStore)
	if err != nil {
		return nil, err
	}

	pruned := records
	if opts.PrunePhotos {
		pruned = PruneExportedPhotos(ctx, records, embedded, opts.PhotoStore)
	}

	config.ExportRunsTotal.Inc()

	return &ExportOutcome{
		File:           f,
		Records:        pruned,
		EmbeddedPhotos: embedded,
	}, nil
}
