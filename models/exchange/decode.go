package exchange

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"bitbucket.org/mmdatafocus/paneltrack_backend/utils"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// cellAt reads a cell by resolved column index; unresolved columns (-1) and
// short rows read as empty.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAffirmative: a load flag is true iff the cell text contains the
// affirmative token. Nothing else is truthy.
func parseAffirmative(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Contains(s, "yes") || strings.Contains(s, "예")
}

// parsePercent strips a trailing percent sign and parses the rest as a
// finite float in [0, 100].
func parsePercent(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

// parsePosition: a row contributes a floor-plan position only when both axes
// parse; anything else falls back to the centered default, never an error.
func parsePosition(rawX string, rawY string) models.Position {
	x, okX := parsePercent(rawX)
	y, okY := parsePercent(rawY)
	if !okX || !okY {
		return models.DefaultPosition()
	}
	return models.Position{X: x, Y: y}
}

func splitInspectors(raw string) models.StringList {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var inspectors models.StringList
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			inspectors = append(inspectors, name)
		}
	}
	return utils.UniqueSlice(inspectors)
}

func decodeBoardRow(row []string, cols columnMap) (*models.InspectionRecord, error) {
	panelNo := cellAt(row, cols[colPanelNo])
	if panelNo == "" {
		return nil, fmt.Errorf("missing panel number")
	}

	lastInspection := cellAt(row, cols[colLastInspection])
	if lastInspection == "" {
		lastInspection = models.DateUnset
	}

	record := &models.InspectionRecord{
		PanelNo:            panelNo,
		Status:             models.ParseInspectionStatus(cellAt(row, cols[colStatus])),
		LastInspectionDate: lastInspection,
		Loads: models.LoadFlags{
			Welder:  parseAffirmative(cellAt(row, cols[colWelder])),
			Grinder: parseAffirmative(cellAt(row, cols[colGrinder])),
			Light:   parseAffirmative(cellAt(row, cols[colLight])),
			Pump:    parseAffirmative(cellAt(row, cols[colPump])),
		},
		Memo:             cellAt(row, cols[colMemo]),
		Position:         parsePosition(cellAt(row, cols[colPosX]), cellAt(row, cols[colPosY])),
		ProjectName:      cellAt(row, cols[colProject]),
		Contractor:       cellAt(row, cols[colContractor]),
		ManagementNumber: cellAt(row, cols[colManagementNo]),
		Inspectors:       splitInspectors(cellAt(row, cols[colInspectors])),
	}

	if err := validate.Struct(record); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			return nil, fmt.Errorf("invalid record: %v", utils.ProcessValidationErrors(err))
		}
		return nil, err
	}
	return record, nil
}

// decodeRow is swapped out in tests to exercise the panic recovery path.
var decodeRow = decodeBoardRow

// decodeBoardRows applies the partial-load policy: one malformed row never
// aborts the import. Returns decoded records plus a failure per skipped row,
// with 1-based spreadsheet row numbers.
func decodeBoardRows(rows [][]string, cols columnMap) (records []*models.InspectionRecord, failures []RowFailure) {
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNo := i + 1

		record, err := func() (rec *models.InspectionRecord, err error) {
			defer func() {
				if r := recover(); r != nil {
					rec = nil
					err = fmt.Errorf("row processing panic: %v", r)
				}
			}()
			return decodeRow(row, cols)
		}()

		if err != nil {
			failures = append(failures, RowFailure{Row: rowNo, Reason: err.Error()})
			continue
		}
		records = append(records, record)
	}
	return records, failures
}
