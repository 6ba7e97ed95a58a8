package exchange

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"github.com/xuri/excelize/v2"
)

// Output sheet names. Each matches its own import alias so an exported
// workbook always re-imports.
const (
	boardListSheetName = "분전반 목록"
	photoSheetName     = "사진"
	reportSheetName    = "보고서"
	metaSheetName      = "메타"
)

var boardListHeaders = []string{
	"분전반 번호 (Panel No)",
	"점검 상태 (Status)",
	"최근 점검일 (Last Inspection)",
	"용접기 (Welder)",
	"그라인더 (Grinder)",
	"조명 (Light)",
	"펌프 (Pump)",
	"위치 X (%)",
	"위치 Y (%)",
	"메모 (Memo)",
	"공사명 (Project)",
	"시공사 (Contractor)",
	"관리번호 (Management No)",
	"점검자 (Inspectors)",
}

// Fixed declarative column widths.
var (
	boardListColWidths = []float64{16, 12, 18, 10, 10, 10, 10, 10, 10, 30, 20, 18, 16, 20}
	detailColWidths    = []float64{6, 12, 10, 20, 10, 10, 9, 9, 9, 9, 9, 9, 9}
	photoColWidths     = []float64{16, 16, 24}
)

const thermalNotice = "열화상 측정은 부하 가동 상태에서 수행되었으며, 방사율 보정값을 적용한 결과임."

func cellName(col int, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setColWidths(f *excelize.File, sheet string, widths []float64) {
	for i, width := range widths {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, colName, colName, width)
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func formatFlag(v bool) string {
	if v {
		return "예"
	}
	return "아니오"
}

func joinNames(names models.StringList) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}

func writeBoardListSheet(f *excelize.File, records []*models.InspectionRecord) error {
	sheet := boardListSheetName
	setColWidths(f, sheet, boardListColWidths)

	for i, header := range boardListHeaders {
		if err := f.SetCellValue(sheet, cellName(i+1, 1), header); err != nil {
			return err
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.PanelNo,
			string(rec.Status),
			rec.LastInspectionDate,
			formatFlag(rec.Loads.Welder),
			formatFlag(rec.Loads.Grinder),
			formatFlag(rec.Loads.Light),
			formatFlag(rec.Loads.Pump),
			formatPercent(rec.Position.X),
			formatPercent(rec.Position.Y),
			rec.Memo,
			rec.ProjectName,
			rec.Contractor,
			rec.ManagementNumber,
			joinNames(rec.Inspectors),
		}
		for col, value := range values {
			if err := f.SetCellValue(sheet, cellName(col+1, row), value); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeBoardDetailSheet emits the per-panel inspection table: metadata grid,
// grouped breaker header, breaker rows, thermal block and load summary. It
// is a pure function of one record; the same record always produces the
// same table structure.
func writeBoardDetailSheet(f *excelize.File, rec *models.InspectionRecord) error {
	sheet := "점검표 " + rec.PanelNo
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	setColWidths(f, sheet, detailColWidths)

	// Metadata grid: label column, value merged across the remaining width.
	metaRows := []struct {
		label string
		value string
	}{
		{"공사명 (Project)", rec.ProjectName},
		{"시공사 (Contractor)", rec.Contractor},
		{"관리번호 (Management No)", rec.ManagementNumber},
		{"점검자 (Inspectors)", joinNames(rec.Inspectors)},
	}
	for i, meta := range metaRows {
		row := i + 1
		if err := f.SetCellValue(sheet, cellName(1, row), meta.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellName(2, row), meta.value); err != nil {
			return err
		}
		if err := f.MergeCell(sheet, cellName(2, row), cellName(13, row)); err != nil {
			return err
		}
	}

	// Two-row breaker header: single columns span both rows, the three-phase
	// currents and four load capacities sit under merged super-header cells.
	singleHeaders := []string{"번호 (No)", "분류 (Category)", "용량 (Capacity)", "부하명 (Load Name)", "타입 (Type)", "종류 (Kind)"}
	for i, header := range singleHeaders {
		col := i + 1
		if err := f.SetCellValue(sheet, cellName(col, 6), header); err != nil {
			return err
		}
		if err := f.MergeCell(sheet, cellName(col, 6), cellName(col, 7)); err != nil {
			return err
		}
	}
	if err := f.SetCellValue(sheet, cellName(7, 6), "상전류 (A)"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, cellName(7, 6), cellName(9, 6)); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cellName(10, 6), "부하용량 (kW)"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, cellName(10, 6), cellName(13, 6)); err != nil {
		return err
	}
	subHeaders := []string{"R상", "S상", "T상", "동력", "전등", "전열", "예비"}
	for i, header := range subHeaders {
		if err := f.SetCellValue(sheet, cellName(i+7, 7), header); err != nil {
			return err
		}
	}

	dataStart := 8
	for i, b := range rec.Breakers {
		row := dataStart + i
		values := []interface{}{
			b.Number, b.Category, b.Capacity, b.LoadName, b.Type, b.Kind,
			b.CurrentR.String(), b.CurrentS.String(), b.CurrentT.String(),
			b.CapMotor.String(), b.CapLight.String(), b.CapHeat.String(), b.CapSpare.String(),
		}
		for col, value := range values {
			if err := f.SetCellValue(sheet, cellName(col+1, row), value); err != nil {
				return err
			}
		}
	}

	// Thermal measurement block.
	row := dataStart + len(rec.Breakers) + 1
	if err := f.SetCellValue(sheet, cellName(1, row), "열화상 측정 (Thermal Measurement)"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, cellName(1, row), cellName(13, row)); err != nil {
		return err
	}
	row++
	thermal := rec.ThermalImage
	if thermal == nil {
		thermal = &models.ThermalImage{}
	}
	thermalRows := []struct {
		label string
		value string
	}{
		{"측정 장비 (Equipment)", thermal.EquipmentId},
		{"최고 온도 (Max Temp)", thermal.MaxTemp.String()},
		{"평균 온도 (Avg Temp)", thermal.AvgTemp.String()},
		{"방사율 (Emissivity)", thermal.Emissivity.String()},
		{"측정 시각 (Measured At)", thermal.MeasuredAt},
	}
	for _, tr := range thermalRows {
		if err := f.SetCellValue(sheet, cellName(1, row), tr.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellName(2, row), tr.value); err != nil {
			return err
		}
		row++
	}
	if err := f.SetCellValue(sheet, cellName(1, row), thermalNotice); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, cellName(1, row), cellName(13, row)); err != nil {
		return err
	}

	// Load summary block: per-phase sums and percentages.
	row += 2
	summary := rec.LoadSummary
	if summary == nil {
		summary = models.ComputeLoadSummary(rec.Breakers)
	}
	if err := f.SetCellValue(sheet, cellName(1, row), "부하 집계 (Load Summary)"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, cellName(1, row), cellName(13, row)); err != nil {
		return err
	}
	row++
	summaryHeader := []string{"구분", "R상", "S상", "T상"}
	for i, header := range summaryHeader {
		if err := f.SetCellValue(sheet, cellName(i+1, row), header); err != nil {
			return err
		}
	}
	row++
	sums := []string{"전류 합계 (A)", summary.PhaseR.String(), summary.PhaseS.String(), summary.PhaseT.String()}
	for i, value := range sums {
		if err := f.SetCellValue(sheet, cellName(i+1, row), value); err != nil {
			return err
		}
	}
	row++
	percents := []string{"부하율 (%)", summary.PercentR.String(), summary.PercentS.String(), summary.PercentT.String()}
	for i, value := range percents {
		if err := f.SetCellValue(sheet, cellName(i+1, row), value); err != nil {
			return err
		}
	}
	return nil
}

// writePhotosSheet embeds each board's photos, one data row per photo, with
// the image anchored in the reserved photo column of its row. Returns the
// panel numbers whose site photo made it into the document.
func writePhotosSheet(ctx context.Context, f *excelize.File, records []*models.InspectionRecord, store PhotoStore) (map[string]bool, error) {
	logger := config.GetLogger()

	type photoRow struct {
		boardNo string
		kind    models.PhotoKind
		url     string
	}
	var pending []photoRow
	for _, rec := range records {
		if rec.PhotoUrl != "" {
			pending = append(pending, photoRow{rec.PanelNo, models.PhotoKindSite, rec.PhotoUrl})
		}
		if rec.ThermalImage != nil && rec.ThermalImage.ImageUrl != "" {
			pending = append(pending, photoRow{rec.PanelNo, models.PhotoKindThermal, rec.ThermalImage.ImageUrl})
		}
	}
	embedded := make(map[string]bool)
	if len(pending) == 0 || store == nil {
		return embedded, nil
	}

	sheet := photoSheetName
	if _, err := f.NewSheet(sheet); err != nil {
		return embedded, err
	}
	setColWidths(f, sheet, photoColWidths)

	headers := []string{"분전반 번호 (Panel No)", "사진 종류 (Photo Type)", "사진 (Photo)"}
	for i, header := range headers {
		if err := f.SetCellValue(sheet, cellName(i+1, 1), header); err != nil {
			return embedded, err
		}
	}

	row := 2
	for _, photo := range pending {
		data, err := store.Fetch(ctx, photo.url)
		if err != nil {
			config.LogError(logger, "exchange", "writePhotosSheet", "fetching photo", photo.url, err)
			continue
		}

		kindLabel := "현장 (Site)"
		if photo.kind == models.PhotoKindThermal {
			kindLabel = "열화상 (Thermal)"
		}
		if err := f.SetCellValue(sheet, cellName(1, row), photo.boardNo); err != nil {
			return embedded, err
		}
		if err := f.SetCellValue(sheet, cellName(2, row), kindLabel); err != nil {
			return embedded, err
		}

		ext := filepath.Ext(photo.url)
		if ext == "" {
			ext = ".png"
		}
		if err := f.AddPictureFromBytes(sheet, cellName(3, row), &excelize.Picture{
			Extension: ext,
			File:      data,
		}); err != nil {
			config.LogError(logger, "exchange", "writePhotosSheet", "embedding photo", photo.boardNo, err)
			row++
			continue
		}
		if photo.kind == models.PhotoKindSite {
			embedded[photo.boardNo] = true
		}
		row++
	}

	// Drop the sheet again if nothing could be embedded.
	if row == 2 {
		_ = f.DeleteSheet(sheet)
	}
	return embedded, nil
}

func writeReportsSheet(f *excelize.File, reports []*models.ReportRecord) error {
	if len(reports) == 0 {
		return nil
	}
	sheet := reportSheetName
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"분전반 번호 (Board No)", "보고서 ID (Report ID)", "생성일 (Generated At)", "상태 (Status)", "HTML"}
	for i, header := range headers {
		if err := f.SetCellValue(sheet, cellName(i+1, 1), header); err != nil {
			return err
		}
	}
	for i, report := range reports {
		row := i + 2
		values := []interface{}{
			report.BoardId,
			report.ReportId,
			report.GeneratedAt.UTC().Format(reportTimeLayout),
			string(report.Status),
			encodeReportHTML(report.HtmlContent),
		}
		for col, value := range values {
			if err := f.SetCellValue(sheet, cellName(col+1, row), value); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMetaSheet(f *excelize.File, boardCount int, exportedAt time.Time) error {
	sheet := metaSheetName
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := []struct {
		label string
		value interface{}
	}{
		{"양식 버전 (Format Version)", SupportedFormatVersion},
		{"내보낸 날짜 (Exported At)", exportedAt.UTC().Format(reportTimeLayout)},
		{"분전반 수 (Board Count)", boardCount},
	}
	for i, meta := range rows {
		if err := f.SetCellValue(sheet, cellName(1, i+1), meta.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellName(2, i+1), meta.value); err != nil {
			return err
		}
	}
	return nil
}

// BuildWorkbook emits the full interchange document: board list, one detail
// sheet per board, photos and reports sheets when non-empty, and the format
// metadata sheet. Returns the workbook and the set of panel numbers whose
// site photo was embedded.
func BuildWorkbook(ctx context.Context, records []*models.InspectionRecord, reports []*models.ReportRecord, store PhotoStore) (*excelize.File, map[string]bool, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", boardListSheetName); err != nil {
		return nil, nil, err
	}

	if err := writeBoardListSheet(f, records); err != nil {
		return nil, nil, err
	}
	for _, rec := range records {
		if err := writeBoardDetailSheet(f, rec); err != nil {
			return nil, nil, fmt.Errorf("detail sheet for %s: %w", rec.PanelNo, err)
		}
	}

	embedded, err := writePhotosSheet(ctx, f, records, store)
	if err != nil {
		return nil, nil, err
	}
	if err := writeReportsSheet(f, reports); err != nil {
		return nil, nil, err
	}
	if err := writeMetaSheet(f, len(records), time.Now()); err != nil {
		return nil, nil, err
	}

	index, err := f.GetSheetIndex(boardListSheetName)
	if err == nil && index >= 0 {
		f.SetActiveSheet(index)
	}
	return f, embedded, nil
}
