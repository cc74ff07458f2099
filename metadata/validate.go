/*
DESCRIPTION
  validate.go checks a Record against the field-range and structural rules
  that SMPTE ST-2094-40 Application 4, Version 1 requires.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package metadata

import "fmt"

// InvalidFieldError reports a Record field that fails an ST-2094-40
// constraint.
type InvalidFieldError struct {
	Field      string
	Actual     interface{}
	Constraint string
}

func (e *InvalidFieldError) Error() string {
	return "metadata: invalid " + e.Field + ": " + e.Constraint
}

func invalidField(field, constraint string, actual interface{}) error {
	return &InvalidFieldError{Field: field, Actual: actual, Constraint: constraint}
}

// Validate checks rec against every Application 4 Version 1 constraint in
// spec.md §3 / §4.3, returning the first violation found.
func (rec *Record) Validate() error {
	if rec.ApplicationIdentifier != 4 {
		return invalidField("application_identifier", "must equal 4", rec.ApplicationIdentifier)
	}
	if rec.ApplicationVersion != 1 {
		return invalidField("application_version", "must equal 1", rec.ApplicationVersion)
	}
	if err := rec.validateV1(); err != nil {
		return err
	}

	if rec.TargetedSystemDisplayMaximumLuminance > 10000 {
		return invalidField("targeted_system_display_maximum_luminance", "must be at most 10000", rec.TargetedSystemDisplayMaximumLuminance)
	}

	if rec.ToneMappingFlag {
		if rec.TargetedSystemDisplayMaximumLuminance == 0 {
			return invalidField("targeted_system_display_maximum_luminance", "must not be zero for profile B", rec.TargetedSystemDisplayMaximumLuminance)
		}
	} else {
		if rec.TargetedSystemDisplayMaximumLuminance != 0 {
			return invalidField("targeted_system_display_maximum_luminance", "must be zero for profile A", rec.TargetedSystemDisplayMaximumLuminance)
		}
	}

	for _, v := range rec.MaxScl {
		if v > 100000 {
			return invalidField("maxscl", "must be at most 100000", rec.MaxScl)
		}
	}
	if rec.AverageMaxRgb > 100000 {
		return invalidField("average_maxrgb", "must be at most 100000", rec.AverageMaxRgb)
	}

	if err := validateDistributionMaxRgb(rec.DistributionMaxRgb, rec.NumDistributionMaxRgbPercentiles); err != nil {
		return err
	}

	if rec.BezierCurve != nil {
		if err := validateBezierCurve(rec.BezierCurve); err != nil {
			return err
		}
	}

	return nil
}

func (rec *Record) validateV1() error {
	if rec.NumWindows != 1 {
		return invalidField("num_windows", "must equal 1 for version 1", rec.NumWindows)
	}
	if rec.TargetedSystemDisplayActualPeakLuminanceFlag {
		return invalidField("targeted_system_display_actual_peak_luminance_flag", "must be false for version 1", rec.TargetedSystemDisplayActualPeakLuminanceFlag)
	}
	if rec.MasteringDisplayActualPeakLuminanceFlag {
		return invalidField("mastering_display_actual_peak_luminance_flag", "must be false for version 1", rec.MasteringDisplayActualPeakLuminanceFlag)
	}
	if rec.ColorSaturationMappingFlag {
		return invalidField("color_saturation_mapping_flag", "must be false for version 1", rec.ColorSaturationMappingFlag)
	}
	return nil
}

// WrongPercentileCountError reports a num_distribution_maxrgb_percentiles
// value other than 9 or 10.
type WrongPercentileCountError struct{ N uint8 }

func (e *WrongPercentileCountError) Error() string {
	return fmt.Sprintf("metadata: invalid number of percentiles: %d", e.N)
}

// PercentileIndexMismatchError reports that the DistributionMaxRgb
// percentage sequence doesn't match the fixed 9- or 10-point distribution.
type PercentileIndexMismatchError struct {
	Got  []uint8
	Want []uint8
}

func (e *PercentileIndexMismatchError) Error() string {
	return "metadata: distribution percentage sequence does not match the expected fixed index set"
}

func validateDistributionMaxRgb(list []DistributionMaxRgb, n uint8) error {
	var want []uint8
	switch n {
	case 9:
		want = distributionIndexes9
	case 10:
		want = distributionIndexes10
	default:
		return &WrongPercentileCountError{N: n}
	}

	got := make([]uint8, len(list))
	for i, d := range list {
		got[i] = d.Percentage
	}
	if !equalUint8(got, want) {
		return &PercentileIndexMismatchError{Got: got, Want: want}
	}

	for _, d := range list {
		if d.Percentile > 100000 {
			return invalidField("distribution_maxrgb.percentile", "must be at most 100000", d.Percentile)
		}
	}
	return nil
}

func equalUint8(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func validateBezierCurve(bc *BezierCurve) error {
	if bc.KneePointX > 4095 {
		return invalidField("bezier_curve.knee_point_x", "must be at most 4095", bc.KneePointX)
	}
	if bc.KneePointY > 4095 {
		return invalidField("bezier_curve.knee_point_y", "must be at most 4095", bc.KneePointY)
	}
	if bc.NumAnchors > 9 {
		return invalidField("bezier_curve.num_bezier_curve_anchors", "must be at most 9", bc.NumAnchors)
	}
	for _, v := range bc.Anchors {
		if v >= 1024 {
			return invalidField("bezier_curve.bezier_curve_anchors", "must be under 1024", bc.Anchors)
		}
	}
	return nil
}
