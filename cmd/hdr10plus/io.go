/*
DESCRIPTION
  io.go resolves the shared --input/-i/positional file argument and
  stdin convention ("-") used by every subcommand.

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
	"bufio"
	"io"
	"os"

	"github.com/ausocean/hdr10plus/internal/hevcstream"
	"github.com/pkg/errors"
)

// resolveInputPath picks the effective input path from a --input/-i flag
// value and the flag set's positional arguments, which are mutually
// exclusive per spec.md's CLI surface.
func resolveInputPath(flagValue string, positional []string) (string, error) {
	switch {
	case flagValue != "" && len(positional) > 0:
		return "", errors.New("input given both positionally and via --input/-i")
	case flagValue != "":
		return flagValue, nil
	case len(positional) > 0:
		return positional[0], nil
	default:
		return "", errors.New("no input given")
	}
}

// openInput opens path for reading, treating "-" as stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening input %q", path)
	}
	return f, nil
}

// createOutput creates path for writing, treating "-" as stdout.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating output %q", path)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// openAnnexBInput opens path like openInput, but peeks the first bytes
// first and rejects a Matroska container with a clear error instead of
// letting it fall through to a confusing NAL-parsing failure.
func openAnnexBInput(path string) (io.ReadCloser, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(r)
	peeked, _ := br.Peek(4)
	if err := hevcstream.CheckAnnexB(peeked); err != nil {
		r.Close()
		return nil, err
	}
	return readCloser{br, r}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// readAllInput reads the entirety of an input path into memory, used
// where a command needs two independent passes over a non-seekable
// source (stdin).
func readAllInput(path string) ([]byte, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading input %q", path)
	}
	return data, nil
}

// readAllAnnexBInput is readAllInput plus a Matroska container check.
func readAllAnnexBInput(path string) ([]byte, error) {
	data, err := readAllInput(path)
	if err != nil {
		return nil, err
	}
	if err := hevcstream.CheckAnnexB(data); err != nil {
		return nil, err
	}
	return data, nil
}
