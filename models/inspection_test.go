package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeLoadSummary(t *testing.T) {
	breakers := []Breaker{
		{CurrentR: decimal.NewFromInt(30), CurrentS: decimal.NewFromInt(40), CurrentT: decimal.NewFromInt(30)},
		{CurrentR: decimal.NewFromInt(10), CurrentS: decimal.NewFromInt(20), CurrentT: decimal.NewFromInt(70)},
	}
	summary := ComputeLoadSummary(breakers)

	if !summary.PhaseR.Equal(decimal.NewFromInt(40)) ||
		!summary.PhaseS.Equal(decimal.NewFromInt(60)) ||
		!summary.PhaseT.Equal(decimal.NewFromInt(100)) {
		t.Errorf("sums: %s/%s/%s", summary.PhaseR, summary.PhaseS, summary.PhaseT)
	}
	// total 200: 20%, 30%, 50%
	if !summary.PercentR.Equal(decimal.NewFromInt(20)) ||
		!summary.PercentS.Equal(decimal.NewFromInt(30)) ||
		!summary.PercentT.Equal(decimal.NewFromInt(50)) {
		t.Errorf("percents: %s/%s/%s", summary.PercentR, summary.PercentS, summary.PercentT)
	}
}

func TestComputeLoadSummaryNoBreakers(t *testing.T) {
	summary := ComputeLoadSummary(nil)
	if !summary.PhaseR.IsZero() || !summary.PercentR.IsZero() {
		t.Errorf("empty summary: %+v", summary)
	}
}

func TestLoadFlagsDescribe(t *testing.T) {
	if got := (LoadFlags{}).Describe(); got != "해당 없음 (None)" {
		t.Errorf("no flags: %q", got)
	}
	got := LoadFlags{Welder: true, Pump: true}.Describe()
	if got != "용접기(Welder), 펌프(Pump)" {
		t.Errorf("two flags: %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := &InspectionRecord{
		PanelNo:      "B-01",
		Breakers:     []Breaker{{Number: 1, CurrentR: decimal.NewFromInt(10)}},
		ThermalImage: &ThermalImage{EquipmentId: "FLIR-E8"},
		Inspectors:   StringList{"김철수"},
	}
	clone := rec.Clone()

	clone.Breakers[0].Number = 99
	clone.ThermalImage.EquipmentId = "changed"
	clone.Inspectors[0] = "changed"

	if rec.Breakers[0].Number != 1 {
		t.Error("breaker slice shared")
	}
	if rec.ThermalImage.EquipmentId != "FLIR-E8" {
		t.Error("thermal image shared")
	}
	if rec.Inspectors[0] != "김철수" {
		t.Error("inspector list shared")
	}
}

func TestParseInspectionStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want InspectionStatus
	}{
		{"완료", InspectionStatusComplete},
		{"점검 완료", InspectionStatusComplete},
		{"Complete", InspectionStatusComplete},
		{"InProgress", InspectionStatusInProgress},
		{"진행중", InspectionStatusInProgress},
		{"in progress", InspectionStatusInProgress},
		{"Pending", InspectionStatusPending},
		{"", InspectionStatusPending},
		{"garbage", InspectionStatusPending},
	}
	for _, tc := range cases {
		if got := ParseInspectionStatus(tc.raw); got != tc.want {
			t.Errorf("ParseInspectionStatus(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParsePhotoKind(t *testing.T) {
	if ParsePhotoKind("열화상 (Thermal)") != PhotoKindThermal {
		t.Error("thermal korean")
	}
	if ParsePhotoKind("Thermal") != PhotoKindThermal {
		t.Error("thermal english")
	}
	if ParsePhotoKind("현장") != PhotoKindSite {
		t.Error("site korean")
	}
	if ParsePhotoKind("") != PhotoKindSite {
		t.Error("default kind")
	}
}

func TestStringListScanRoundTrip(t *testing.T) {
	value, err := StringList{"a", "b"}.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var back StringList
	if err := back.Scan(value); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(back) != 2 || back[0] != "a" || back[1] != "b" {
		t.Errorf("got %v", back)
	}

	var empty StringList
	if err := empty.Scan(nil); err != nil || empty != nil {
		t.Errorf("nil scan: %v %v", empty, err)
	}
}
