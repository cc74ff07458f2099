/*
DESCRIPTION
  remove_cmd.go implements the `remove` subcommand: strip ST-2094-40
  dynamic metadata from an HEVC stream.

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

	"github.com/ausocean/hdr10plus/remove"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

func runRemove(args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	input := fs.String("input", "", "input HEVC file (or - for stdin)")
	fs.StringVar(input, "i", "", "shorthand for --input")
	output := fs.String("output", remove.DefaultOutputName, "output HEVC file")
	fs.Parse(args)

	path, err := resolveInputPath(*input, fs.Args())
	if err != nil {
		return errors.Wrap(err, "remove")
	}
	r, err := openAnnexBInput(path)
	if err != nil {
		return errors.Wrap(err, "remove")
	}
	defer r.Close()

	w, err := createOutput(*output)
	if err != nil {
		return err
	}
	defer w.Close()

	dropped, shortened, err := remove.Remove(r, w)
	if err != nil {
		return errors.Wrap(err, "remove")
	}
	log.Info(pkg+"removed ST-2094-40 metadata", "nalsDropped", dropped, "nalsShortened", shortened)
	return nil
}
