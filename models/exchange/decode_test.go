package exchange

import (
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
)

func TestParseAffirmative(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"Yes", true},
		{"yes", true},
		{"Yes (verified)", true},
		{"예", true},
		{"예 (확인)", true},
		{"No", false},
		{"아니오", false},
		{"", false},
		{"true", false},
		{"1", false},
	}
	for _, tc := range cases {
		if got := parseAffirmative(tc.raw); got != tc.want {
			t.Errorf("parseAffirmative(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"25.5%", 25.5, true},
		{"30%", 30, true},
		{"0", 0, true},
		{"100", 100, true},
		{" 42.0 % ", 42, true},
		{"42 ", 42, true},
		{"101", 0, false},
		{"-1", 0, false},
		{"N/A", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePercent(tc.raw)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parsePercent(%q) = %v,%v, want %v,%v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParsePositionFallsBackToDefault(t *testing.T) {
	pos := parsePosition("25.5%", "30%")
	if pos.X != 25.5 || pos.Y != 30 {
		t.Errorf("got %+v", pos)
	}

	// One bad axis drops both.
	for _, pair := range [][2]string{{"N/A", "30"}, {"25", ""}, {"", ""}, {"120", "30"}} {
		pos := parsePosition(pair[0], pair[1])
		if pos != models.DefaultPosition() {
			t.Errorf("parsePosition(%q, %q) = %+v, want default", pair[0], pair[1], pos)
		}
	}
}

func TestSplitInspectors(t *testing.T) {
	got := splitInspectors(" 김철수 , 이영희 ,, John Smith ")
	want := []string{"김철수", "이영희", "John Smith"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("inspector[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if splitInspectors("  ") != nil {
		t.Error("blank cell must produce nil list")
	}

	deduped := splitInspectors("김철수, 이영희, 김철수")
	if len(deduped) != 2 || deduped[0] != "김철수" || deduped[1] != "이영희" {
		t.Errorf("duplicate names must collapse: %v", deduped)
	}
}

func boardRowsFixture() ([][]string, columnMap) {
	headers := []string{
		"분전반 번호", "점검 상태", "최근 점검일", "용접기", "그라인더", "조명", "펌프",
		"위치 x", "위치 y", "메모", "공사명", "시공사", "관리번호", "점검자",
	}
	cols, _, _ := resolveColumns(headers, boardColumnSpecs)
	rows := [][]string{
		headers,
		{"B-01", "완료", "2026-08-01", "예", "아니오", "Yes", "No", "25.5%", "30%", "정상", "현장 A", "한빛전기", "M-001", "김철수, 이영희"},
		{"", "완료", "2026-08-01"}, // no panel number
		{"B-02", "진행중"},
	}
	return rows, cols
}

func TestDecodeBoardRowsPartialLoad(t *testing.T) {
	rows, cols := boardRowsFixture()
	records, failures := decodeBoardRows(rows, cols)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1: %v", len(failures), failures)
	}
	// Spreadsheet row numbers are what the user sees: header is row 1.
	if failures[0].Row != 3 {
		t.Errorf("failure row = %d, want 3", failures[0].Row)
	}
	if !strings.Contains(failures[0].Reason, "panel number") {
		t.Errorf("failure reason = %q", failures[0].Reason)
	}

	first := records[0]
	if first.PanelNo != "B-01" || first.Status != models.InspectionStatusComplete {
		t.Errorf("first record: %+v", first)
	}
	if !first.Loads.Welder || first.Loads.Grinder || !first.Loads.Light || first.Loads.Pump {
		t.Errorf("load flags: %+v", first.Loads)
	}
	if first.Position.X != 25.5 || first.Position.Y != 30 {
		t.Errorf("position: %+v", first.Position)
	}
	if len(first.Inspectors) != 2 || first.Inspectors[0] != "김철수" {
		t.Errorf("inspectors: %v", first.Inspectors)
	}

	second := records[1]
	if second.Status != models.InspectionStatusInProgress {
		t.Errorf("second status: %v", second.Status)
	}
	if second.LastInspectionDate != models.DateUnset {
		t.Errorf("missing date must default to %q, got %q", models.DateUnset, second.LastInspectionDate)
	}
	if second.Position != models.DefaultPosition() {
		t.Errorf("short row must default position, got %+v", second.Position)
	}
}

func TestDecodeBoardRowsRecoversRowPanic(t *testing.T) {
	original := decodeRow
	decodeRow = func(row []string, cols columnMap) (*models.InspectionRecord, error) {
		if cellAt(row, cols[colPanelNo]) == "B-01" {
			panic("corrupt cell payload")
		}
		return original(row, cols)
	}
	defer func() { decodeRow = original }()

	rows, cols := boardRowsFixture()
	records, failures := decodeBoardRows(rows, cols)

	if len(records) != 1 || records[0].PanelNo != "B-02" {
		t.Fatalf("rows after the panicking one must still decode: %+v", records)
	}
	var panicked *RowFailure
	for i := range failures {
		if failures[i].Row == 2 {
			panicked = &failures[i]
		}
	}
	if panicked == nil {
		t.Fatalf("no failure recorded for the panicking row: %v", failures)
	}
	if !strings.Contains(panicked.Reason, "panic") || !strings.Contains(panicked.Reason, "corrupt cell payload") {
		t.Errorf("failure reason = %q", panicked.Reason)
	}
}

func TestDecodeBoardRowsHeaderOnly(t *testing.T) {
	rows, cols := boardRowsFixture()
	records, failures := decodeBoardRows(rows[:1], cols)
	if len(records) != 0 || len(failures) != 0 {
		t.Errorf("header-only sheet: %d records, %d failures", len(records), len(failures))
	}
}
