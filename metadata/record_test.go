package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func profileARecord() *Record {
	rec := &Record{
		ItuTT35CountryCode:                  0xB5,
		ItuTT35TerminalProviderCode:         0x003C,
		ItuTT35TerminalProviderOrientedCode: 0x0001,
		ApplicationIdentifier:               4,
		ApplicationVersion:                  1,
		NumWindows:                          1,
		TargetedSystemDisplayMaximumLuminance: 0,
		MaxScl:                      [3]uint32{50000, 45000, 40000},
		AverageMaxRgb:               20000,
		NumDistributionMaxRgbPercentiles: 9,
		DistributionMaxRgb: []DistributionMaxRgb{
			{Percentage: 1, Percentile: 1000},
			{Percentage: 5, Percentile: 2000},
			{Percentage: 10, Percentile: 3000},
			{Percentage: 25, Percentile: 4000},
			{Percentage: 50, Percentile: 5000},
			{Percentage: 75, Percentile: 6000},
			{Percentage: 90, Percentile: 7000},
			{Percentage: 95, Percentile: 8000},
			{Percentage: 99, Percentile: 9000},
		},
		FractionBrightPixels: 100,
		ToneMappingFlag:      false,
	}
	rec.SetProfile()
	return rec
}

func profileBRecord() *Record {
	rec := profileARecord()
	rec.TargetedSystemDisplayMaximumLuminance = 1000
	rec.ToneMappingFlag = true
	rec.BezierCurve = &BezierCurve{
		KneePointX: 1000,
		KneePointY: 500,
		NumAnchors: 3,
		Anchors:    []uint16{100, 200, 300},
	}
	rec.SetProfile()
	return rec
}

func TestRoundTripProfileA(t *testing.T) {
	rec := profileARecord()
	if rec.Profile() != ProfileA {
		t.Fatalf("Profile() = %v; want A", rec.Profile())
	}

	encoded, err := rec.Encode(true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got.profile = rec.profile

	if diff := cmp.Diff(rec, got, cmp.AllowUnexported(Record{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripProfileB(t *testing.T) {
	rec := profileBRecord()
	if rec.Profile() != ProfileB {
		t.Fatalf("Profile() = %v; want B", rec.Profile())
	}

	encoded, err := rec.Encode(true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got.profile = rec.profile

	if diff := cmp.Diff(rec, got, cmp.AllowUnexported(Record{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsWrongApplicationIdentifier(t *testing.T) {
	rec := profileARecord()
	rec.ApplicationIdentifier = 1
	if err := rec.Validate(); err == nil {
		t.Fatal("Validate() = nil; want error for wrong application_identifier")
	}
}

func TestValidateRejectsProfileAWithNonZeroLuminance(t *testing.T) {
	rec := profileARecord()
	rec.TargetedSystemDisplayMaximumLuminance = 500
	if err := rec.Validate(); err == nil {
		t.Fatal("Validate() = nil; want error for profile A with non-zero targeted luminance")
	}
}

func TestValidateRejectsWrongPercentileCount(t *testing.T) {
	rec := profileARecord()
	rec.NumDistributionMaxRgbPercentiles = 3
	rec.DistributionMaxRgb = rec.DistributionMaxRgb[:3]
	err := rec.Validate()
	if _, ok := err.(*WrongPercentileCountError); !ok {
		t.Fatalf("Validate() err = %T; want *WrongPercentileCountError", err)
	}
}

func TestValidateRejectsPercentileIndexMismatch(t *testing.T) {
	rec := profileARecord()
	rec.DistributionMaxRgb[0].Percentage = 2
	err := rec.Validate()
	if _, ok := err.(*PercentileIndexMismatchError); !ok {
		t.Fatalf("Validate() err = %T; want *PercentileIndexMismatchError", err)
	}
}

func TestSetProfileClassifiesNA(t *testing.T) {
	rec := profileARecord()
	rec.ToneMappingFlag = true // no targeted luminance, no Bezier curve: neither A nor B shape
	if p := rec.SetProfile(); p != ProfileNA {
		t.Fatalf("SetProfile() = %v; want N/A", p)
	}
}
