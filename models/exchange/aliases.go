// Package exchange implements the spreadsheet interchange and reconciliation
// engine: it serializes the inspection working set to a multi-sheet xlsx
// workbook and turns such a workbook back into validated records, embedded
// photos and report artifacts, reconciled against the live dataset.
package exchange

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Logical column keys of the board sheet.
const (
	colPanelNo        = "panelNo"
	colStatus         = "status"
	colLastInspection = "lastInspection"
	colWelder         = "welder"
	colGrinder        = "grinder"
	colLight          = "light"
	colPump           = "pump"
	colPosX           = "posX"
	colPosY           = "posY"
	colMemo           = "memo"
	colProject        = "project"
	colContractor     = "contractor"
	colManagementNo   = "managementNo"
	colInspectors     = "inspectors"
)

// Logical column keys of the photos sheet.
const (
	colPhotoBoard = "photoBoard"
	colPhotoType  = "photoType"
)

// Logical column keys of the reports sheet.
const (
	colReportBoard     = "reportBoard"
	colReportId        = "reportId"
	colReportGenerated = "reportGenerated"
	colReportStatus    = "reportStatus"
	colReportHtml      = "reportHtml"
)

type columnSpec struct {
	key      string
	aliases  []string
	required bool
}

// Header aliases mix the Korean site vocabulary with English fallbacks.
// Lookup is case-insensitive substring match in declaration order; the first
// header containing any alias wins.
var boardColumnSpecs = []columnSpec{
	{key: colPanelNo, aliases: []string{"분전반 번호", "분전반", "panel no", "panel number", "board no"}, required: true},
	{key: colStatus, aliases: []string{"점검 상태", "상태", "status"}},
	{key: colLastInspection, aliases: []string{"최근 점검일", "점검일", "last inspection", "inspection date"}},
	{key: colWelder, aliases: []string{"용접기", "welder"}},
	{key: colGrinder, aliases: []string{"그라인더", "grinder"}},
	{key: colLight, aliases: []string{"조명", "light"}},
	{key: colPump, aliases: []string{"펌프", "pump"}},
	{key: colPosX, aliases: []string{"위치 x", "x 좌표", "position x", "pos x"}},
	{key: colPosY, aliases: []string{"위치 y", "y 좌표", "position y", "pos y"}},
	{key: colMemo, aliases: []string{"메모", "비고", "memo", "note"}},
	{key: colProject, aliases: []string{"공사명", "project"}},
	{key: colContractor, aliases: []string{"시공사", "업체", "contractor"}},
	{key: colManagementNo, aliases: []string{"관리번호", "management no", "management number"}},
	{key: colInspectors, aliases: []string{"점검자", "inspector"}},
}

var photoColumnSpecs = []columnSpec{
	{key: colPhotoBoard, aliases: []string{"분전반 번호", "분전반", "panel no", "board no"}, required: true},
	{key: colPhotoType, aliases: []string{"사진 종류", "종류", "photo type", "type"}},
}

var reportColumnSpecs = []columnSpec{
	{key: colReportBoard, aliases: []string{"분전반 번호", "분전반", "panel no", "board no"}},
	{key: colReportId, aliases: []string{"보고서 id", "보고서 번호", "report id"}},
	{key: colReportGenerated, aliases: []string{"생성일", "generated"}},
	{key: colReportStatus, aliases: []string{"상태", "status"}},
	{key: colReportHtml, aliases: []string{"html", "내용", "content"}},
}

// Sheet-name aliases. Sheets are located by fuzzy match so the engine
// tolerates reordering and renaming within this vocabulary.
var (
	boardSheetAliases  = []string{"분전반 목록", "설비 목록", "board list", "panel list", "목록"}
	photoSheetAliases  = []string{"사진", "photo"}
	reportSheetAliases = []string{"보고서", "report"}
	metaSheetAliases   = []string{"메타", "meta", "양식 정보", "format info"}
)

type columnMap map[string]int

func (m columnMap) has(key string) bool {
	idx, ok := m[key]
	return ok && idx >= 0
}

func headerContains(header string, alias string) bool {
	return strings.Contains(strings.ToLower(header), strings.ToLower(alias))
}

// findColumn returns the index of the first header containing any alias, -1
// if none does.
func findColumn(headers []string, aliases []string) int {
	for _, alias := range aliases {
		for idx, header := range headers {
			if headerContains(header, alias) {
				return idx
			}
		}
	}
	return -1
}

// resolveColumns maps the raw header row to logical column indices. A missing
// required column is a format error; missing optional columns degrade to -1
// and are reported as warnings.
func resolveColumns(headers []string, specs []columnSpec) (columnMap, []string, error) {
	cols := make(columnMap, len(specs))
	var warnings []string
	for _, spec := range specs {
		idx := findColumn(headers, spec.aliases)
		if idx < 0 && spec.required {
			return nil, nil, fmt.Errorf("%w: required column %q not found", ErrFormatInvalid, spec.aliases[0])
		}
		if idx < 0 {
			warnings = append(warnings, fmt.Sprintf("column %q not found; field skipped for all rows", spec.aliases[0]))
		}
		cols[spec.key] = idx
	}
	return cols, warnings, nil
}

// findSheet returns the first sheet whose name matches any alias, or "".
func findSheet(f *excelize.File, aliases []string) string {
	for _, alias := range aliases {
		for _, name := range f.GetSheetList() {
			if headerContains(name, alias) {
				return name
			}
		}
	}
	return ""
}
