/*
DESCRIPTION
  encode.go serializes a Record back into the RBSP bit layout defined by
  SMPTE ST-2094-40 Application 4.

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

import "github.com/ausocean/hdr10plus/bitio"

// Encode serializes rec to its RBSP byte form. When validate is true, rec
// is checked with Validate first and encoding aborts on the first
// violation.
func (rec *Record) Encode(validate bool) ([]byte, error) {
	if validate {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}

	w := bitio.NewWriter()

	w.PutBits(uint64(rec.ItuTT35CountryCode), 8)
	w.PutBits(uint64(rec.ItuTT35TerminalProviderCode), 16)
	w.PutBits(uint64(rec.ItuTT35TerminalProviderOrientedCode), 16)
	w.PutBits(uint64(rec.ApplicationIdentifier), 8)
	w.PutBits(uint64(rec.ApplicationVersion), 8)
	w.PutBits(uint64(rec.NumWindows), 2)

	for _, pw := range rec.ProcessingWindows {
		encodeProcessingWindow(w, pw)
	}

	w.PutBits(uint64(rec.TargetedSystemDisplayMaximumLuminance), 27)

	w.PutBool(rec.TargetedSystemDisplayActualPeakLuminanceFlag)
	if rec.ActualTargetedSystemDisplay != nil {
		encodeActualTargetedSystemDisplay(w, rec.ActualTargetedSystemDisplay)
	}

	for i := uint8(0); i < rec.NumWindows; i++ {
		for _, v := range rec.MaxScl {
			w.PutBits(uint64(v), 17)
		}
		w.PutBits(uint64(rec.AverageMaxRgb), 17)

		w.PutBits(uint64(rec.NumDistributionMaxRgbPercentiles), 4)
		for _, dm := range rec.DistributionMaxRgb {
			encodeDistributionMaxRgb(w, dm)
		}

		w.PutBits(uint64(rec.FractionBrightPixels), 10)
	}

	w.PutBool(rec.MasteringDisplayActualPeakLuminanceFlag)
	if rec.ActualMasteringDisplay != nil {
		encodeActualMasteringDisplay(w, rec.ActualMasteringDisplay)
	}

	for i := uint8(0); i < rec.NumWindows; i++ {
		w.PutBool(rec.ToneMappingFlag)
		if rec.BezierCurve != nil {
			encodeBezierCurve(w, rec.BezierCurve)
		}
	}

	w.PutBool(rec.ColorSaturationMappingFlag)
	if rec.ColorSaturationMappingFlag {
		w.PutBits(uint64(rec.ColorSaturationWeight), 6)
	}

	return w.Finish(), nil
}

func encodeProcessingWindow(w *bitio.Writer, pw ProcessingWindow) {
	w.PutBits(uint64(pw.UpperLeftCornerX), 16)
	w.PutBits(uint64(pw.UpperLeftCornerY), 16)
	w.PutBits(uint64(pw.LowerRightCornerX), 16)
	w.PutBits(uint64(pw.LowerRightCornerY), 16)
	w.PutBits(uint64(pw.CenterOfEllipseX), 16)
	w.PutBits(uint64(pw.CenterOfEllipseY), 16)
	w.PutBits(uint64(pw.RotationAngle), 8)
	w.PutBits(uint64(pw.SemimajorAxisInternalEllipse), 16)
	w.PutBits(uint64(pw.SemimajorAxisExternalEllipse), 16)
	// The reference encoder writes semimajor_axis_external_ellipse a second
	// time here instead of semiminor_axis_external_ellipse. Retained as-is:
	// see the Open Question decisions in DESIGN.md.
	w.PutBits(uint64(pw.SemimajorAxisExternalEllipse), 16)
	w.PutBool(pw.OverlapProcessOption)
}

func encodeActualTargetedSystemDisplay(w *bitio.Writer, atsd *ActualTargetedSystemDisplay) {
	w.PutBits(uint64(atsd.NumRows), 5)
	w.PutBits(uint64(atsd.NumCols), 5)
	for i := uint8(0); i < atsd.NumRows; i++ {
		for j := uint8(0); j < atsd.NumCols; j++ {
			w.PutBits(uint64(atsd.ActualPeakLuminance[i][j]), 4)
		}
	}
}

func encodeActualMasteringDisplay(w *bitio.Writer, amd *ActualMasteringDisplay) {
	w.PutBits(uint64(amd.NumRows), 5)
	w.PutBits(uint64(amd.NumCols), 5)
	for i := uint8(0); i < amd.NumRows; i++ {
		for j := uint8(0); j < amd.NumCols; j++ {
			w.PutBits(uint64(amd.ActualPeakLuminance[i][j]), 4)
		}
	}
}

func encodeDistributionMaxRgb(w *bitio.Writer, dm DistributionMaxRgb) {
	w.PutBits(uint64(dm.Percentage), 7)
	w.PutBits(uint64(dm.Percentile), 17)
}

func encodeBezierCurve(w *bitio.Writer, bc *BezierCurve) {
	w.PutBits(uint64(bc.KneePointX), 12)
	w.PutBits(uint64(bc.KneePointY), 12)
	w.PutBits(uint64(bc.NumAnchors), 4)
	for _, v := range bc.Anchors {
		w.PutBits(uint64(v), 10)
	}
}
