/*
DESCRIPTION
  plot_cmd.go implements the `plot` subcommand: render a JSON metadata
  timeline's peak brightness over the sequence as a PNG line chart.

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

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

const defaultPlotOutput = "peak_brightness.png"

func runPlot(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	input := fs.String("input", "", "input JSON timeline (or - for stdin)")
	fs.StringVar(input, "i", "", "shorthand for --input")
	output := fs.String("output", defaultPlotOutput, "output PNG file")
	title := fs.String("title", "Peak brightness", "plot title")
	peakSource := fs.String("peak-source", "histogram99", "peak brightness source: histogram|histogram99|maxscl|maxscl-luminance")
	fs.Parse(args)

	path, err := resolveInputPath(*input, fs.Args())
	if err != nil {
		return errors.Wrap(err, "plot")
	}
	doc, err := readDocument(path)
	if err != nil {
		return errors.Wrap(err, "plot")
	}

	source, ok := peakSourceNames[*peakSource]
	if !ok {
		return errors.Errorf("plot: unknown peak source %q", *peakSource)
	}

	pts := make(plotter.XYs, 0, len(doc.SceneInfo))
	for _, f := range doc.SceneInfo {
		v, ok := f.PeakBrightness(source)
		if !ok {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(f.SequenceFrameIndex), Y: v})
	}
	if len(pts) == 0 {
		return errors.New("plot: no frames carried a value for the selected peak brightness source")
	}

	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "plot: creating plot")
	}
	p.Title.Text = *title
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "nits"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "plot: building line plotter")
	}
	p.Add(line)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, *output); err != nil {
		return errors.Wrap(err, "plot: saving PNG")
	}
	log.Info(pkg+"wrote peak brightness plot", "output", *output, "frames", len(pts))
	return nil
}
