package exchange

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
)

func board(panelNo string, photoUrl string) *models.InspectionRecord {
	return &models.InspectionRecord{
		PanelNo:            panelNo,
		Status:             models.InspectionStatusPending,
		LastInspectionDate: models.DateUnset,
		Position:           models.DefaultPosition(),
		PhotoUrl:           photoUrl,
	}
}

func TestMergeRecordsProtectsPhotoUrl(t *testing.T) {
	existing := []*models.InspectionRecord{board("B-01", "gs://photos/b01.png")}

	incoming := board("B-01", "")
	incoming.Memo = "재점검 필요"
	merged := MergeRecords(existing, []*models.InspectionRecord{incoming})

	if len(merged) != 1 {
		t.Fatalf("got %d records", len(merged))
	}
	if merged[0].Memo != "재점검 필요" {
		t.Errorf("incoming fields must win, memo = %q", merged[0].Memo)
	}
	if merged[0].PhotoUrl != "gs://photos/b01.png" {
		t.Errorf("blank incoming photo must not clear the stored one, got %q", merged[0].PhotoUrl)
	}

	// A real incoming photo does replace.
	replacement := board("B-01", "gs://photos/new.png")
	merged = MergeRecords(existing, []*models.InspectionRecord{replacement})
	if merged[0].PhotoUrl != "gs://photos/new.png" {
		t.Errorf("incoming photo should replace, got %q", merged[0].PhotoUrl)
	}
}

func TestMergeRecordsAppendsNewKeysInOrder(t *testing.T) {
	existing := []*models.InspectionRecord{board("B-01", ""), board("B-02", "")}
	incoming := []*models.InspectionRecord{board("B-02", ""), board("B-03", "")}

	merged := MergeRecords(existing, incoming)
	if len(merged) != 3 {
		t.Fatalf("got %d records", len(merged))
	}
	for i, want := range []string{"B-01", "B-02", "B-03"} {
		if merged[i].PanelNo != want {
			t.Errorf("merged[%d] = %q, want %q", i, merged[i].PanelNo, want)
		}
	}
}

func TestMergeRecordsIdempotent(t *testing.T) {
	existing := []*models.InspectionRecord{board("B-01", "gs://photos/b01.png")}
	incoming := []*models.InspectionRecord{board("B-01", ""), board("B-02", "")}

	once := MergeRecords(existing, incoming)
	twice := MergeRecords(once, incoming)
	if len(once) != len(twice) {
		t.Fatalf("merge not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].PanelNo != twice[i].PanelNo || once[i].PhotoUrl != twice[i].PhotoUrl {
			t.Errorf("record %d diverged after re-merge: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestMergeRecordsDoesNotMutateInputs(t *testing.T) {
	existing := []*models.InspectionRecord{board("B-01", "gs://photos/b01.png")}
	incoming := []*models.InspectionRecord{board("B-01", "")}

	merged := MergeRecords(existing, incoming)
	merged[0].Memo = "changed"
	if existing[0].Memo != "" || incoming[0].Memo != "" {
		t.Error("merge must return clones, inputs were mutated")
	}
	if incoming[0].PhotoUrl != "" {
		t.Error("incoming record gained a photo url")
	}
}

func TestMergeRecordsDuplicateIncomingLastWins(t *testing.T) {
	a := board("B-01", "")
	a.Memo = "first"
	b := board("B-01", "")
	b.Memo = "second"

	merged := MergeRecords(nil, []*models.InspectionRecord{a, b})
	if len(merged) != 1 {
		t.Fatalf("got %d records", len(merged))
	}
	if merged[0].Memo != "second" {
		t.Errorf("last duplicate must win, memo = %q", merged[0].Memo)
	}
}

func TestMergeReportsKeyedById(t *testing.T) {
	now := time.Now().UTC()
	existing := []*models.ReportRecord{
		{ReportId: "B-01-20260801", BoardId: "B-01", HtmlContent: "old", GeneratedAt: now},
	}
	incoming := []*models.ReportRecord{
		{ReportId: "B-01-20260801", BoardId: "B-01", HtmlContent: "new", GeneratedAt: now},
		{ReportId: "B-02-20260801", BoardId: "B-02", HtmlContent: "b02", GeneratedAt: now},
	}

	merged := MergeReports(existing, incoming)
	if len(merged) != 2 {
		t.Fatalf("got %d reports", len(merged))
	}
	if merged[0].HtmlContent != "new" {
		t.Errorf("same id must replace, got %q", merged[0].HtmlContent)
	}
	if merged[1].ReportId != "B-02-20260801" {
		t.Errorf("new report appended at %q", merged[1].ReportId)
	}
}
