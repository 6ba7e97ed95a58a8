package exchange

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"github.com/xuri/excelize/v2"
)

// PhotoStore is the external home of photo binaries. The engine itself does
// no network I/O; extracted image bytes go out and come back through this
// interface (GCS in production, in-memory in tests).
type PhotoStore interface {
	Save(ctx context.Context, name string, extension string, data []byte) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, url string) error
}

// ImageAnchor is the cell-range an embedded image is positioned at, with the
// image payload. Coordinates are zero-based. Transient: exists only during
// workbook parsing.
type ImageAnchor struct {
	Top       int
	Bottom    int
	Left      int
	Right     int
	Extension string
	Data      []byte
}

// The photos sheet reserves a narrow column band for image content. The
// widened band plus ±1 row tolerance recovers from anchor drift that
// spreadsheet tools introduce when rows are inserted or resized.
const (
	strictPhotoColMin = 2
	strictPhotoColMax = 3
	widenedPhotoColMin = 0
	widenedPhotoColMax = 8
	widenedRowTolerance = 1
)

// collectAnchors lists every embedded image of a sheet in sheet order.
func collectAnchors(f *excelize.File, sheet string) ([]ImageAnchor, error) {
	cells, err := f.GetPictureCells(sheet)
	if err != nil {
		return nil, err
	}
	var anchors []ImageAnchor
	for _, cell := range cells {
		col, row, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			continue
		}
		pictures, err := f.GetPictures(sheet, cell)
		if err != nil {
			continue
		}
		for _, pic := range pictures {
			anchors = append(anchors, ImageAnchor{
				Top:       row - 1,
				Bottom:    row - 1,
				Left:      col - 1,
				Right:     col - 1,
				Extension: pic.Extension,
				Data:      pic.File,
			})
		}
	}
	return anchors, nil
}

func anchorMatches(a ImageAnchor, rowIdx int, colMin int, colMax int, rowTol int) bool {
	if a.Bottom+rowTol < rowIdx || a.Top-rowTol > rowIdx {
		return false
	}
	return a.Right >= colMin && a.Left <= colMax
}

// bindImageToRow matches one embedded image to a data row by anchor
// position: a strict pass over the reserved column band, then (when enabled)
// a widened pass with a loosened band and ±1 row tolerance. Returns nil when
// no image qualifies; that is a diagnostic, not an error.
func bindImageToRow(anchors []ImageAnchor, rowIdx int, widened bool) *ImageAnchor {
	var strict []*ImageAnchor
	for i := range anchors {
		if anchorMatches(anchors[i], rowIdx, strictPhotoColMin, strictPhotoColMax, 0) {
			strict = append(strict, &anchors[i])
		}
	}
	if len(strict) == 1 {
		return strict[0]
	}

	if !widened {
		return nil
	}
	var loose []*ImageAnchor
	for i := range anchors {
		if anchorMatches(anchors[i], rowIdx, widenedPhotoColMin, widenedPhotoColMax, widenedRowTolerance) {
			loose = append(loose, &anchors[i])
		}
	}
	if len(loose) == 0 {
		return nil
	}
	// Later in sheet order wins.
	return loose[len(loose)-1]
}

// bindEmbeddedPhotos walks the photos sheet, matches each data row to an
// embedded image, stores the payload and assigns the resulting reference to
// the row's board: the site-photo slot or the thermal-image slot, chosen by
// the bilingual photo-type cell. Every failure here degrades to a logged
// warning; the import never aborts on media problems.
func bindEmbeddedPhotos(ctx context.Context, f *excelize.File, merged []*models.InspectionRecord, store PhotoStore) []string {
	logger := config.GetLogger()

	sheet := findSheet(f, photoSheetAliases)
	if sheet == "" {
		return nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return nil
	}

	cols, warnings, err := resolveColumns(rows[0], photoColumnSpecs)
	if err != nil {
		return []string{fmt.Sprintf("photos sheet skipped: %v", err)}
	}

	anchors, err := collectAnchors(f, sheet)
	if err != nil {
		return append(warnings, fmt.Sprintf("could not read embedded images: %v", err))
	}

	byKey := make(map[string]*models.InspectionRecord, len(merged))
	for _, rec := range merged {
		byKey[rec.PanelNo] = rec
	}

	widened := config.MediaWidenedFallback()

	for i := 1; i < len(rows); i++ {
		boardNo := cellAt(rows[i], cols[colPhotoBoard])
		if boardNo == "" {
			continue
		}
		rec, ok := byKey[boardNo]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("photo row %d references unknown board %q", i+1, boardNo))
			continue
		}

		anchor := bindImageToRow(anchors, i, widened)
		if anchor == nil {
			config.LogWarn(logger, "exchange", "bindEmbeddedPhotos", "no embedded image matched row", map[string]interface{}{
				"sheet": sheet, "row": i + 1, "board": boardNo,
			})
			continue
		}

		kind := models.ParsePhotoKind(cellAt(rows[i], cols[colPhotoType]))
		if store == nil {
			warnings = append(warnings, fmt.Sprintf("photo for board %q extracted but no photo store configured", boardNo))
			continue
		}

		name := boardNo + "_" + strings.ToLower(string(kind))
		url, err := store.Save(ctx, name, anchor.Extension, anchor.Data)
		if err != nil {
			config.LogError(logger, "exchange", "bindEmbeddedPhotos", "storing extracted photo", boardNo, err)
			warnings = append(warnings, fmt.Sprintf("could not store photo for board %q: %v", boardNo, err))
			continue
		}

		// Sheet order wins when the same slot is assigned twice.
		switch kind {
		case models.PhotoKindThermal:
			if rec.ThermalImage == nil {
				rec.ThermalImage = &models.ThermalImage{}
			}
			rec.ThermalImage.ImageUrl = url
		default:
			rec.PhotoUrl = url
		}
	}

	return warnings
}
