/*
DESCRIPTION
  peak.go computes a frame's peak brightness in nits from any of the four
  luminance signals a ST-2094-40 record carries, for use by the report and
  plot commands.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package jsonmodel

// PeakBrightnessSource selects which signal PeakBrightness reads.
type PeakBrightnessSource int

const (
	// Histogram uses the maximum of the MaxRGB distribution's percentile
	// values (not necessarily the 99th percentile entry).
	Histogram PeakBrightnessSource = iota
	// Histogram99 uses the distribution's last entry, which is the 99th
	// percentile value for both the 9- and 10-point distributions.
	Histogram99
	// MaxScl uses the maximum of the three MaxScl channel values.
	MaxScl
	// MaxSclLuminance derives a single luminance value from the three
	// MaxScl channels using the BT.2020 luma coefficients.
	MaxSclLuminance
)

// PeakBrightness returns f's peak brightness in nits for the given source,
// or false if the frame carries no values for that source. Values are
// stored in tenths of a nit, matching the reference implementation's
// "/10.0" conversion throughout.
func (f Frame) PeakBrightness(source PeakBrightnessSource) (float64, bool) {
	switch source {
	case Histogram:
		vals := f.LuminanceParameters.LuminanceDistributions.DistributionValues
		if len(vals) == 0 {
			return 0, false
		}
		max := vals[0]
		for _, v := range vals[1:] {
			if v > max {
				max = v
			}
		}
		return float64(max) / 10.0, true

	case Histogram99:
		vals := f.LuminanceParameters.LuminanceDistributions.DistributionValues
		if len(vals) == 0 {
			return 0, false
		}
		return float64(vals[len(vals)-1]) / 10.0, true

	case MaxScl:
		vals := f.LuminanceParameters.MaxScl
		if len(vals) == 0 {
			return 0, false
		}
		max := vals[0]
		for _, v := range vals[1:] {
			if v > max {
				max = v
			}
		}
		return float64(max) / 10.0, true

	case MaxSclLuminance:
		vals := f.LuminanceParameters.MaxScl
		if len(vals) != 3 {
			return 0, false
		}
		r, g, b := float64(vals[0]), float64(vals[1]), float64(vals[2])
		luminance := 0.2627*r + 0.678*g + 0.0593*b
		return luminance / 10.0, true

	default:
		return 0, false
	}
}
