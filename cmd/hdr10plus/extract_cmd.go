/*
DESCRIPTION
  extract_cmd.go implements the `extract` subcommand: scan an HEVC
  stream for ST-2094-40 metadata and write the JSON timeline document.

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
	"encoding/json"
	"flag"
	"fmt"

	"github.com/ausocean/hdr10plus/extract"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

func runExtract(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	input := fs.String("input", "", "input HEVC file (or - for stdin)")
	fs.StringVar(input, "i", "", "shorthand for --input")
	output := fs.String("output", "", "output JSON file (default: stdout)")
	skipValidation := fs.Bool("skip-validation", false, "skip per-record validation")
	verify := fs.Bool("verify", false, "only report whether metadata is present, then exit")
	skipReorder := fs.Bool("skip-reorder", false, "skip decode-to-presentation reordering")
	fs.Parse(args)

	path, err := resolveInputPath(*input, fs.Args())
	if err != nil {
		return errors.Wrap(err, "extract")
	}
	r, err := openAnnexBInput(path)
	if err != nil {
		return errors.Wrap(err, "extract")
	}
	defer r.Close()

	opts := extract.Options{SkipValidation: *skipValidation, Verify: *verify, SkipReorder: *skipReorder}
	doc, verifyResult, err := extract.Extract(r, opts, log, toolName, version)
	if err != nil {
		return errors.Wrap(err, "extract")
	}

	if *verify {
		if verifyResult.Found {
			fmt.Println("ST-2094-40 dynamic metadata found")
			return nil
		}
		return errors.New("no ST-2094-40 dynamic metadata found")
	}

	w, err := createOutput(*output)
	if err != nil {
		return err
	}
	defer w.Close()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "extract: writing JSON document")
	}
	return nil
}
