package exchange

import (
	"context"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"github.com/shopspring/decimal"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryPhotoStore()

	first := completeBoard()
	first.Breakers = []models.Breaker{
		{Number: 1, Category: "주차단기", Capacity: "100A", LoadName: "전등", Type: "MCCB", Kind: "3P",
			CurrentR: decimal.NewFromFloat(10.5), CurrentS: decimal.NewFromFloat(11), CurrentT: decimal.NewFromFloat(9.5)},
		{Number: 2, Category: "분기", Capacity: "30A", LoadName: "용접기", Type: "ELB", Kind: "2P",
			CurrentR: decimal.NewFromFloat(4), CapMotor: decimal.NewFromFloat(2.2)},
	}
	first.ThermalImage = &models.ThermalImage{
		MaxTemp:     decimal.NewFromFloat(42.5),
		AvgTemp:     decimal.NewFromFloat(31.2),
		Emissivity:  decimal.NewFromFloat(0.95),
		EquipmentId: "FLIR-E8",
		MeasuredAt:  "2026-08-01 14:00",
	}
	photoUrl, err := store.Save(ctx, "seed", ".png", pngBytes(t))
	if err != nil {
		t.Fatalf("seed photo: %v", err)
	}
	first.PhotoUrl = photoUrl

	second := board("B-02", "")
	records := []*models.InspectionRecord{first, second}

	generatedAt := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	report, err := BuildReportRecord(first, generatedAt)
	if err != nil {
		t.Fatalf("BuildReportRecord: %v", err)
	}

	outcome, err := ExportWorkbook(ctx, records, []*models.ReportRecord{report}, ExportOptions{
		PhotoStore:  store,
		PrunePhotos: true,
	})
	if err != nil {
		t.Fatalf("ExportWorkbook: %v", err)
	}
	defer outcome.File.Close()

	if !outcome.EmbeddedPhotos["B-01"] {
		t.Fatal("site photo was not embedded")
	}
	if outcome.Records[0].PhotoUrl != "" {
		t.Errorf("pruned record still references %q", outcome.Records[0].PhotoUrl)
	}
	if records[0].PhotoUrl != photoUrl {
		t.Error("input record was mutated by pruning")
	}
	if _, err := store.Fetch(ctx, photoUrl); err == nil {
		t.Error("pruned photo should be deleted from the store")
	}

	imported, err := ImportWorkbook(ctx, outcome.File, nil, nil, ImportOptions{
		PhotoStore: store,
		FileName:   "roundtrip.xlsx",
	})
	if err != nil {
		t.Fatalf("ImportWorkbook: %v", err)
	}
	if len(imported.Result.Skipped) != 0 {
		t.Fatalf("skipped rows: %v", imported.Result.Skipped)
	}
	if len(imported.Records) != 2 {
		t.Fatalf("got %d records", len(imported.Records))
	}

	got := imported.Records[0]
	if got.PanelNo != "B-01" || got.Status != models.InspectionStatusComplete {
		t.Errorf("record: %+v", got)
	}
	if got.LastInspectionDate != "2026-08-01" {
		t.Errorf("date: %q", got.LastInspectionDate)
	}
	if got.Loads != first.Loads {
		t.Errorf("loads: %+v, want %+v", got.Loads, first.Loads)
	}
	if got.Position != first.Position {
		t.Errorf("position: %+v, want %+v", got.Position, first.Position)
	}
	if got.Memo != first.Memo || got.ProjectName != first.ProjectName ||
		got.Contractor != first.Contractor || got.ManagementNumber != first.ManagementNumber {
		t.Errorf("metadata fields lost: %+v", got)
	}
	if len(got.Inspectors) != 2 || got.Inspectors[1] != "이영희" {
		t.Errorf("inspectors: %v", got.Inspectors)
	}
	if got.PhotoUrl == "" {
		t.Error("embedded photo did not come back as a stored reference")
	}

	gotSecond := imported.Records[1]
	if gotSecond.PanelNo != "B-02" || gotSecond.LastInspectionDate != models.DateUnset {
		t.Errorf("second record: %+v", gotSecond)
	}
	if gotSecond.Position != models.DefaultPosition() {
		t.Errorf("second position: %+v", gotSecond.Position)
	}

	if len(imported.Reports) != 1 {
		t.Fatalf("got %d reports", len(imported.Reports))
	}
	if imported.Reports[0].ReportId != report.ReportId {
		t.Errorf("report id: %q", imported.Reports[0].ReportId)
	}
	if imported.Reports[0].HtmlContent != report.HtmlContent {
		t.Error("report html did not survive the round trip")
	}
}

func TestImportWorkbookVersionGate(t *testing.T) {
	f := workbookWithVersion(t, "9.9")
	defer f.Close()

	_, err := ImportWorkbook(context.Background(), f, nil, nil, ImportOptions{})
	if err == nil {
		t.Fatal("mismatched version with no confirmation must abort")
	}
}

func TestImportWorkbookNoBoardSheet(t *testing.T) {
	f := workbookWithVersion(t, SupportedFormatVersion)
	defer f.Close()

	_, err := ImportWorkbook(context.Background(), f, nil, nil, ImportOptions{})
	if err == nil {
		t.Fatal("workbook without a board sheet must be a format error")
	}
}

func TestImportWorkbookReconcilesExisting(t *testing.T) {
	ctx := context.Background()
	store := newMemoryPhotoStore()

	existingPhoto, _ := store.Save(ctx, "existing", ".png", pngBytes(t))
	existing := []*models.InspectionRecord{board("B-01", existingPhoto)}

	outcome, err := ExportWorkbook(ctx, []*models.InspectionRecord{board("B-01", ""), board("B-03", "")}, nil, ExportOptions{})
	if err != nil {
		t.Fatalf("ExportWorkbook: %v", err)
	}
	defer outcome.File.Close()

	imported, err := ImportWorkbook(ctx, outcome.File, existing, nil, ImportOptions{PhotoStore: store})
	if err != nil {
		t.Fatalf("ImportWorkbook: %v", err)
	}
	if len(imported.Records) != 2 {
		t.Fatalf("got %d records", len(imported.Records))
	}
	if imported.Records[0].PhotoUrl != existingPhoto {
		t.Errorf("existing photo must be protected, got %q", imported.Records[0].PhotoUrl)
	}
	if imported.Records[1].PanelNo != "B-03" {
		t.Errorf("new board appended: %q", imported.Records[1].PanelNo)
	}
}
