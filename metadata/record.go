/*
DESCRIPTION
  record.go implements the SMPTE ST-2094-40 Application 4 dynamic metadata
  record: its in-memory representation, bitstream parsing and encoding, and
  the field-level validation required of a Version 1 stream.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package metadata implements the SMPTE ST-2094-40 Application 4 dynamic
// metadata record carried inside HDR10+ SEI messages: its bit-accurate
// parse/encode and the validation rules a conforming Version 1 stream must
// satisfy.
package metadata

import (
	"github.com/ausocean/hdr10plus/bitio"
	"github.com/pkg/errors"
)

// Profile classifies a Record's tone-mapping behaviour.
type Profile string

const (
	ProfileA  Profile = "A"
	ProfileB  Profile = "B"
	ProfileNA Profile = "N/A"
)

var distributionIndexes9 = []uint8{1, 5, 10, 25, 50, 75, 90, 95, 99}
var distributionIndexes10 = []uint8{1, 5, 10, 25, 50, 75, 90, 95, 98, 99}

// ProcessingWindow describes a single processing window. ST-2094-40
// Version 1 always carries exactly one implicit window and never encodes
// an explicit ProcessingWindow entry (num_windows == 1), so this type is
// only populated when decoding a hypothetical future multi-window stream.
type ProcessingWindow struct {
	UpperLeftCornerX  uint16
	UpperLeftCornerY  uint16
	LowerRightCornerX uint16
	LowerRightCornerY uint16

	CenterOfEllipseX uint16
	CenterOfEllipseY uint16
	RotationAngle    uint8

	SemimajorAxisInternalEllipse uint16
	SemimajorAxisExternalEllipse uint16
	SemiminorAxisExternalEllipse uint16

	OverlapProcessOption bool
}

// ActualTargetedSystemDisplay carries the actual peak luminance matrix of
// the targeted system display, present only when
// TargetedSystemDisplayActualPeakLuminanceFlag is set.
type ActualTargetedSystemDisplay struct {
	NumRows uint8
	NumCols uint8
	// ActualPeakLuminance is NumRows x NumCols, each entry a 4-bit value.
	ActualPeakLuminance [][]uint8
}

// DistributionMaxRgb is one percentile/value pair of the MaxRGB
// distribution.
type DistributionMaxRgb struct {
	Percentage uint8
	Percentile uint32
}

// ActualMasteringDisplay carries the actual peak luminance matrix of the
// mastering display, present only when
// MasteringDisplayActualPeakLuminanceFlag is set.
type ActualMasteringDisplay struct {
	NumRows uint8
	NumCols uint8
	// ActualPeakLuminance is NumRows x NumCols, each entry a 4-bit value.
	ActualPeakLuminance [][]uint8
}

// BezierCurve is the tone-mapping curve for a single processing window,
// present only when ToneMappingFlag is set.
type BezierCurve struct {
	KneePointX          uint16
	KneePointY          uint16
	NumAnchors          uint8
	Anchors             []uint16
}

// Record is a fully decoded ST-2094-40 Application 4 dynamic metadata
// record, as carried by a single HDR10+ SEI message.
type Record struct {
	ItuTT35CountryCode                  uint8
	ItuTT35TerminalProviderCode         uint16
	ItuTT35TerminalProviderOrientedCode uint16

	ApplicationIdentifier uint8
	ApplicationVersion    uint8
	NumWindows            uint8

	ProcessingWindows []ProcessingWindow

	TargetedSystemDisplayMaximumLuminance       uint32
	TargetedSystemDisplayActualPeakLuminanceFlag bool
	ActualTargetedSystemDisplay                  *ActualTargetedSystemDisplay

	MaxScl                           [3]uint32
	AverageMaxRgb                    uint32
	NumDistributionMaxRgbPercentiles uint8
	DistributionMaxRgb               []DistributionMaxRgb
	FractionBrightPixels             uint16

	MasteringDisplayActualPeakLuminanceFlag bool
	ActualMasteringDisplay                   *ActualMasteringDisplay

	ToneMappingFlag bool
	BezierCurve     *BezierCurve

	ColorSaturationMappingFlag bool
	ColorSaturationWeight      uint8

	profile Profile
}

// Parse decodes a Record from an RBSP payload (emulation prevention
// already stripped).
func Parse(rbsp []byte) (*Record, error) {
	r := bitio.NewReader(rbsp)
	var rec Record
	var err error

	if rec.ItuTT35CountryCode, err = r.Uint8(8); err != nil {
		return nil, errors.Wrap(err, "metadata: itu_t_t35_country_code")
	}
	if rec.ItuTT35TerminalProviderCode, err = r.Uint16(16); err != nil {
		return nil, errors.Wrap(err, "metadata: itu_t_t35_terminal_provider_code")
	}
	if rec.ItuTT35TerminalProviderOrientedCode, err = r.Uint16(16); err != nil {
		return nil, errors.Wrap(err, "metadata: itu_t_t35_terminal_provider_oriented_code")
	}
	if rec.ApplicationIdentifier, err = r.Uint8(8); err != nil {
		return nil, errors.Wrap(err, "metadata: application_identifier")
	}
	if rec.ApplicationVersion, err = r.Uint8(8); err != nil {
		return nil, errors.Wrap(err, "metadata: application_version")
	}
	if rec.NumWindows, err = r.Uint8(2); err != nil {
		return nil, errors.Wrap(err, "metadata: num_windows")
	}

	if rec.NumWindows > 1 {
		for i := uint8(1); i < rec.NumWindows; i++ {
			pw, err := parseProcessingWindow(r)
			if err != nil {
				return nil, errors.Wrapf(err, "metadata: processing_window[%d]", i)
			}
			rec.ProcessingWindows = append(rec.ProcessingWindows, pw)
		}
	}

	v32, err := r.Uint32(27)
	if err != nil {
		return nil, errors.Wrap(err, "metadata: targeted_system_display_maximum_luminance")
	}
	rec.TargetedSystemDisplayMaximumLuminance = v32

	if rec.TargetedSystemDisplayActualPeakLuminanceFlag, err = r.Bool(); err != nil {
		return nil, errors.Wrap(err, "metadata: targeted_system_display_actual_peak_luminance_flag")
	}
	if rec.TargetedSystemDisplayActualPeakLuminanceFlag {
		atsd, err := parseActualTargetedSystemDisplay(r)
		if err != nil {
			return nil, errors.Wrap(err, "metadata: actual_targeted_system_display")
		}
		rec.ActualTargetedSystemDisplay = atsd
	}

	for w := uint8(0); w < rec.NumWindows; w++ {
		for i := 0; i < 3; i++ {
			v, err := r.Uint32(17)
			if err != nil {
				return nil, errors.Wrap(err, "metadata: maxscl")
			}
			rec.MaxScl[i] = v
		}

		if rec.AverageMaxRgb, err = r.Uint32(17); err != nil {
			return nil, errors.Wrap(err, "metadata: average_maxrgb")
		}

		if rec.NumDistributionMaxRgbPercentiles, err = r.Uint8(4); err != nil {
			return nil, errors.Wrap(err, "metadata: num_distribution_maxrgb_percentiles")
		}
		for i := uint8(0); i < rec.NumDistributionMaxRgbPercentiles; i++ {
			dm, err := parseDistributionMaxRgb(r)
			if err != nil {
				return nil, errors.Wrapf(err, "metadata: distribution_maxrgb[%d]", i)
			}
			rec.DistributionMaxRgb = append(rec.DistributionMaxRgb, dm)
		}

		if rec.FractionBrightPixels, err = r.Uint16(10); err != nil {
			return nil, errors.Wrap(err, "metadata: fraction_bright_pixels")
		}
	}

	if rec.MasteringDisplayActualPeakLuminanceFlag, err = r.Bool(); err != nil {
		return nil, errors.Wrap(err, "metadata: mastering_display_actual_peak_luminance_flag")
	}
	if rec.MasteringDisplayActualPeakLuminanceFlag {
		amd, err := parseActualMasteringDisplay(r)
		if err != nil {
			return nil, errors.Wrap(err, "metadata: actual_mastering_display")
		}
		rec.ActualMasteringDisplay = amd
	}

	for w := uint8(0); w < rec.NumWindows; w++ {
		if rec.ToneMappingFlag, err = r.Bool(); err != nil {
			return nil, errors.Wrap(err, "metadata: tone_mapping_flag")
		}
		if rec.ToneMappingFlag {
			bc, err := parseBezierCurve(r)
			if err != nil {
				return nil, errors.Wrap(err, "metadata: bezier_curve")
			}
			rec.BezierCurve = bc
		}
	}

	if rec.ColorSaturationMappingFlag, err = r.Bool(); err != nil {
		return nil, errors.Wrap(err, "metadata: color_saturation_mapping_flag")
	}
	if rec.ColorSaturationMappingFlag {
		if rec.ColorSaturationWeight, err = r.Uint8(6); err != nil {
			return nil, errors.Wrap(err, "metadata: color_saturation_weight")
		}
	}

	rec.SetProfile()

	return &rec, nil
}

func parseProcessingWindow(r *bitio.Reader) (ProcessingWindow, error) {
	var pw ProcessingWindow
	var err error
	fields := []struct {
		dst *uint16
		n   int
	}{
		{&pw.UpperLeftCornerX, 16},
		{&pw.UpperLeftCornerY, 16},
		{&pw.LowerRightCornerX, 16},
		{&pw.LowerRightCornerY, 16},
		{&pw.CenterOfEllipseX, 16},
		{&pw.CenterOfEllipseY, 16},
	}
	for _, f := range fields {
		*f.dst, err = r.Uint16(f.n)
		if err != nil {
			return pw, err
		}
	}
	if pw.RotationAngle, err = r.Uint8(8); err != nil {
		return pw, err
	}
	if pw.SemimajorAxisInternalEllipse, err = r.Uint16(16); err != nil {
		return pw, err
	}
	if pw.SemimajorAxisExternalEllipse, err = r.Uint16(16); err != nil {
		return pw, err
	}
	if pw.SemiminorAxisExternalEllipse, err = r.Uint16(16); err != nil {
		return pw, err
	}
	if pw.OverlapProcessOption, err = r.Bool(); err != nil {
		return pw, err
	}
	return pw, nil
}

func parseActualTargetedSystemDisplay(r *bitio.Reader) (*ActualTargetedSystemDisplay, error) {
	var atsd ActualTargetedSystemDisplay
	var err error
	if atsd.NumRows, err = r.Uint8(5); err != nil {
		return nil, err
	}
	if atsd.NumCols, err = r.Uint8(5); err != nil {
		return nil, err
	}
	atsd.ActualPeakLuminance = make([][]uint8, atsd.NumRows)
	for i := range atsd.ActualPeakLuminance {
		atsd.ActualPeakLuminance[i] = make([]uint8, atsd.NumCols)
		for j := range atsd.ActualPeakLuminance[i] {
			v, err := r.Uint8(4)
			if err != nil {
				return nil, err
			}
			atsd.ActualPeakLuminance[i][j] = v
		}
	}
	return &atsd, nil
}

func parseActualMasteringDisplay(r *bitio.Reader) (*ActualMasteringDisplay, error) {
	var amd ActualMasteringDisplay
	var err error
	if amd.NumRows, err = r.Uint8(5); err != nil {
		return nil, err
	}
	if amd.NumCols, err = r.Uint8(5); err != nil {
		return nil, err
	}
	amd.ActualPeakLuminance = make([][]uint8, amd.NumRows)
	for i := range amd.ActualPeakLuminance {
		amd.ActualPeakLuminance[i] = make([]uint8, amd.NumCols)
		for j := range amd.ActualPeakLuminance[i] {
			v, err := r.Uint8(4)
			if err != nil {
				return nil, err
			}
			amd.ActualPeakLuminance[i][j] = v
		}
	}
	return &amd, nil
}

func parseDistributionMaxRgb(r *bitio.Reader) (DistributionMaxRgb, error) {
	var dm DistributionMaxRgb
	var err error
	if dm.Percentage, err = r.Uint8(7); err != nil {
		return dm, err
	}
	v, err := r.Uint32(17)
	if err != nil {
		return dm, err
	}
	dm.Percentile = v
	return dm, nil
}

func parseBezierCurve(r *bitio.Reader) (*BezierCurve, error) {
	var bc BezierCurve
	var err error
	if bc.KneePointX, err = r.Uint16(12); err != nil {
		return nil, err
	}
	if bc.KneePointY, err = r.Uint16(12); err != nil {
		return nil, err
	}
	if bc.NumAnchors, err = r.Uint8(4); err != nil {
		return nil, err
	}
	bc.Anchors = make([]uint16, bc.NumAnchors)
	for i := range bc.Anchors {
		v, err := r.Uint16(10)
		if err != nil {
			return nil, err
		}
		bc.Anchors[i] = v
	}
	return &bc, nil
}

// SetProfile derives and stores the Record's Profile classification,
// following the exact rule of the reference encoder: Profile B requires
// tone mapping, a non-zero targeted display luminance, and at least one
// Bezier curve anchor; Profile A requires no tone mapping and a zero
// targeted display luminance (the Bezier curve is not inspected);
// anything else is N/A.
func (rec *Record) SetProfile() Profile {
	var p Profile
	switch {
	case rec.ToneMappingFlag && rec.TargetedSystemDisplayMaximumLuminance > 0:
		if rec.BezierCurve != nil && rec.BezierCurve.NumAnchors > 0 {
			p = ProfileB
		} else {
			p = ProfileNA
		}
	case !rec.ToneMappingFlag && rec.TargetedSystemDisplayMaximumLuminance == 0:
		p = ProfileA
	default:
		p = ProfileNA
	}
	rec.profile = p
	return p
}

// Profile returns the Record's cached profile classification, computing it
// via SetProfile first if it has never been set. This lets a freshly built
// Record (as the JSON bridge constructs one) report a correct
// classification without a separate SetProfile call.
func (rec *Record) Profile() Profile {
	if rec.profile == "" {
		return rec.SetProfile()
	}
	return rec.profile
}
