package exchange

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"text/template"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"github.com/xuri/excelize/v2"
)

const reportTimeLayout = "2006-01-02 15:04:05"

// Canonical report HTML. Regeneration is deterministic over the record's
// field values so every import yields a well-formed, non-empty report even
// from a stripped-down workbook.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="ko">
<head><meta charset="utf-8"><title>점검 보고서 {{.BoardId}}</title></head>
<body>
<h1>분전반 점검 보고서</h1>
<table>
<tr><th>분전반 번호</th><td>{{.BoardId}}</td></tr>
<tr><th>공사명</th><td>{{.ProjectName}}</td></tr>
<tr><th>시공사</th><td>{{.Contractor}}</td></tr>
<tr><th>관리번호</th><td>{{.ManagementNumber}}</td></tr>
<tr><th>점검자</th><td>{{.Inspectors}}</td></tr>
<tr><th>점검 상태</th><td>{{.Status}}</td></tr>
<tr><th>부하 원인</th><td>{{.LoadCause}}</td></tr>
<tr><th>최근 점검일</th><td>{{.LastInspectionDate}}</td></tr>
</table>
<h2>메모</h2>
<p>{{.Memo}}</p>
<p class="generated">생성일: {{.GeneratedAt}}</p>
</body>
</html>
`))

type reportTemplateData struct {
	BoardId            string
	ProjectName        string
	Contractor         string
	ManagementNumber   string
	Inspectors         string
	Status             string
	LoadCause          string
	LastInspectionDate string
	Memo               string
	GeneratedAt        string
}

// RegenerateReportHTML synthesizes the canonical report artifact from a
// record's current field values.
func RegenerateReportHTML(rec *models.InspectionRecord, generatedAt time.Time) (string, error) {
	data := reportTemplateData{
		BoardId:            rec.PanelNo,
		ProjectName:        rec.ProjectName,
		Contractor:         rec.Contractor,
		ManagementNumber:   rec.ManagementNumber,
		Inspectors:         strings.Join(rec.Inspectors, ", "),
		Status:             string(rec.Status),
		LoadCause:          rec.Loads.Describe(),
		LastInspectionDate: rec.LastInspectionDate,
		Memo:               rec.Memo,
		GeneratedAt:        generatedAt.UTC().Format(reportTimeLayout),
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildReportRecord generates a fresh report for a record, as the report
// generator does when an inspection reaches Complete.
func BuildReportRecord(rec *models.InspectionRecord, generatedAt time.Time) (*models.ReportRecord, error) {
	html, err := RegenerateReportHTML(rec, generatedAt)
	if err != nil {
		return nil, err
	}
	return &models.ReportRecord{
		ReportId:    models.BuildReportId(rec.PanelNo, generatedAt),
		BoardId:     rec.PanelNo,
		Status:      rec.Status,
		GeneratedAt: generatedAt,
		HtmlContent: html,
	}, nil
}

func encodeReportHTML(html string) string {
	return base64.StdEncoding.EncodeToString([]byte(html))
}

// decodeReportHTML decodes a base64 payload cell. Structurally invalid
// base64 or empty decoded content rejects the payload so the caller falls
// back to regeneration.
func decodeReportHTML(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", false
	}
	if len(bytes.TrimSpace(decoded)) == 0 {
		return "", false
	}
	return string(decoded), true
}

// decodeReports reads the reports sheet. Reports are optional auxiliary
// data: rows missing the board key or report id are skipped silently, and a
// bad HTML payload triggers regeneration from the matching record rather
// than an error.
func decodeReports(f *excelize.File, merged []*models.InspectionRecord) ([]*models.ReportRecord, []string) {
	sheet := findSheet(f, reportSheetAliases)
	if sheet == "" {
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return nil, nil
	}

	cols, warnings, err := resolveColumns(rows[0], reportColumnSpecs)
	if err != nil {
		return nil, []string{fmt.Sprintf("reports sheet skipped: %v", err)}
	}

	byKey := make(map[string]*models.InspectionRecord, len(merged))
	for _, rec := range merged {
		byKey[rec.PanelNo] = rec
	}

	var reports []*models.ReportRecord
	for i := 1; i < len(rows); i++ {
		boardNo := cellAt(rows[i], cols[colReportBoard])
		reportId := cellAt(rows[i], cols[colReportId])
		if boardNo == "" || reportId == "" {
			continue
		}

		generatedAt, err := time.Parse(reportTimeLayout, cellAt(rows[i], cols[colReportGenerated]))
		if err != nil {
			generatedAt = time.Now().UTC()
		}
		status := models.ParseInspectionStatus(cellAt(rows[i], cols[colReportStatus]))

		html, ok := decodeReportHTML(cellAt(rows[i], cols[colReportHtml]))
		if !ok {
			rec, found := byKey[boardNo]
			if !found {
				warnings = append(warnings, fmt.Sprintf("report row %d: no payload and unknown board %q", i+1, boardNo))
				continue
			}
			html, err = RegenerateReportHTML(rec, generatedAt)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("report row %d: regeneration failed: %v", i+1, err))
				continue
			}
		}

		reports = append(reports, &models.ReportRecord{
			ReportId:    reportId,
			BoardId:     boardNo,
			Status:      status,
			GeneratedAt: generatedAt,
			HtmlContent: html,
		})
	}
	return reports, warnings
}
