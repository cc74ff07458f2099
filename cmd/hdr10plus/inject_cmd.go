/*
DESCRIPTION
  inject_cmd.go implements the `inject` subcommand: merge a JSON
  metadata timeline into an HEVC stream.

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
	"bytes"
	"encoding/json"
	"flag"

	"github.com/ausocean/hdr10plus/inject"
	"github.com/ausocean/hdr10plus/jsonmodel"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

const defaultInjectOutput = "injected_output.hevc"

func runInject(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("inject", flag.ExitOnError)
	input := fs.String("input", "", "input HEVC file (or - for stdin)")
	fs.StringVar(input, "i", "", "shorthand for --input")
	jsonPath := fs.String("json", "", "JSON metadata timeline to inject")
	output := fs.String("output", defaultInjectOutput, "output HEVC file")
	validate := fs.Bool("validate", false, "validate each record as it's encoded")
	fs.Parse(args)

	if *jsonPath == "" {
		return errors.New("inject: --json is required")
	}

	path, err := resolveInputPath(*input, fs.Args())
	if err != nil {
		return errors.Wrap(err, "inject")
	}

	doc, err := readDocument(*jsonPath)
	if err != nil {
		return errors.Wrap(err, "inject")
	}
	records, err := jsonmodel.ToRecords(doc)
	if err != nil {
		return errors.Wrap(err, "inject: converting JSON timeline to records")
	}

	// The injector needs two independent passes over the same stream
	// content: buffer it in memory so a non-seekable source (stdin)
	// works the same as a named file.
	data, err := readAllAnnexBInput(path)
	if err != nil {
		return errors.Wrap(err, "inject")
	}

	w, err := createOutput(*output)
	if err != nil {
		return errors.Wrap(err, "inject")
	}
	defer w.Close()

	opts := inject.Options{Validate: *validate}
	if err := inject.Inject(bytes.NewReader(data), bytes.NewReader(data), w, records, opts, log); err != nil {
		return errors.Wrap(err, "inject")
	}
	return nil
}

func readDocument(path string) (*jsonmodel.Document, error) {
	data, err := readAllInput(path)
	if err != nil {
		return nil, err
	}
	var doc jsonmodel.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing JSON document")
	}
	return &doc, nil
}
