/*
DESCRIPTION
  editor_cmd.go implements the `editor` subcommand: apply a remove/
  duplicate edit config to a JSON metadata timeline.

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
	"strings"

	"github.com/ausocean/hdr10plus/editor"
	"github.com/ausocean/hdr10plus/jsonmodel"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

func runEditor(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("editor", flag.ExitOnError)
	input := fs.String("input", "", "input JSON timeline (or - for stdin)")
	fs.StringVar(input, "i", "", "shorthand for --input")
	cfgPath := fs.String("json", "", "edit config JSON (remove/duplicate)")
	output := fs.String("output", "", "output JSON file (default: derived from input name)")
	fs.Parse(args)

	if *cfgPath == "" {
		return errors.New("editor: --json is required")
	}

	path, err := resolveInputPath(*input, fs.Args())
	if err != nil {
		return errors.Wrap(err, "editor")
	}

	doc, err := readDocument(path)
	if err != nil {
		return errors.Wrap(err, "editor")
	}
	records, err := jsonmodel.ToRecords(doc)
	if err != nil {
		return errors.Wrap(err, "editor: converting JSON timeline to records")
	}

	cfgData, err := readAllInput(*cfgPath)
	if err != nil {
		return errors.Wrap(err, "editor")
	}
	var cfg editor.EditConfig
	if err := json.Unmarshal(cfgData, &cfg); err != nil {
		return errors.Wrap(err, "editor: parsing edit config")
	}

	edited, result, err := editor.Apply(records, cfg)
	if err != nil {
		return errors.Wrap(err, "editor")
	}
	log.Info(pkg+"applied edit config", "framesRemoved", result.Removed, "framesDuplicated", result.Duplicated)

	outDoc, err := jsonmodel.FromRecords(edited, doc.ToolInfo.Tool, doc.ToolInfo.Version)
	if err != nil {
		return errors.Wrap(err, "editor: rebuilding JSON timeline")
	}

	outPath := *output
	if outPath == "" {
		outPath = derivedOutputName(path)
	}
	w, err := createOutput(outPath)
	if err != nil {
		return err
	}
	defer w.Close()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outDoc); err != nil {
		return errors.Wrap(err, "editor: writing JSON document")
	}
	return nil
}

// derivedOutputName mirrors the reference editor's "{stem}_modified.json"
// default output naming, falling back to a fixed name for stdin input.
func derivedOutputName(inputPath string) string {
	if inputPath == "-" || inputPath == "" {
		return "edited_output.json"
	}
	stem := inputPath
	if idx := strings.LastIndexByte(stem, '.'); idx > 0 {
		stem = stem[:idx]
	}
	return stem + "_modified.json"
}
