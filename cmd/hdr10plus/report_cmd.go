/*
DESCRIPTION
  report_cmd.go implements the `report` subcommand: summarize a JSON
  metadata timeline's profile, scene count, and peak brightness
  statistics.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"flag"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/hdr10plus/jsonmodel"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

var peakSourceNames = map[string]jsonmodel.PeakBrightnessSource{
	"histogram":        jsonmodel.Histogram,
	"histogram99":      jsonmodel.Histogram99,
	"maxscl":           jsonmodel.MaxScl,
	"maxscl-luminance": jsonmodel.MaxSclLuminance,
}

func runReport(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	input := fs.String("input", "", "input JSON timeline (or - for stdin)")
	fs.StringVar(input, "i", "", "shorthand for --input")
	peakSource := fs.String("peak-source", "histogram99", "peak brightness source: histogram|histogram99|maxscl|maxscl-luminance")
	fs.Parse(args)

	path, err := resolveInputPath(*input, fs.Args())
	if err != nil {
		return errors.Wrap(err, "report")
	}
	doc, err := readDocument(path)
	if err != nil {
		return errors.Wrap(err, "report")
	}

	source, ok := peakSourceNames[*peakSource]
	if !ok {
		return errors.Errorf("report: unknown peak source %q", *peakSource)
	}

	var peaks []float64
	for _, f := range doc.SceneInfo {
		if v, ok := f.PeakBrightness(source); ok {
			peaks = append(peaks, v)
		}
	}
	if len(peaks) == 0 {
		log.Warning(pkg + "no frames carried a value for the selected peak brightness source")
	}

	fmt.Printf("Tool:            %s %s\n", doc.ToolInfo.Tool, doc.ToolInfo.Version)
	fmt.Printf("Profile:         %s\n", doc.Info.Profile)
	fmt.Printf("Frames:          %d\n", len(doc.SceneInfo))
	fmt.Printf("Scenes:          %d\n", len(doc.SceneInfoSummary.SceneFirstFrameIndex))
	if len(peaks) > 0 {
		min, max := minMax(peaks)
		mean := stat.Mean(peaks, nil)
		fmt.Printf("Peak brightness (%s, nits): min=%.1f max=%.1f mean=%.1f\n", *peakSource, min, max, mean)
	}
	return nil
}

func minMax(vals []float64) (min, max float64) {
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
