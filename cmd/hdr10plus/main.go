/*
DESCRIPTION
  hdr10plus is a command-line toolkit for extracting, injecting,
  removing and editing SMPTE ST-2094-40 Application 4 (HDR10+) dynamic
  metadata in HEVC Annex-B elementary streams.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is the hdr10plus CLI entry point.
package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"
)

// Current software version, reported in --version and written into the
// JSON document's ToolInfo.
const version = "v0.1.0"

const toolName = "hdr10plus"

// Logging configuration.
const (
	logPath      = "hdr10plus.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

const pkg = "hdr10plus: "

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	log := newLogger()

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:], log)
	case "inject":
		err = runInject(os.Args[2:], log)
	case "remove":
		err = runRemove(os.Args[2:], log)
	case "editor":
		err = runEditor(os.Args[2:], log)
	case "report":
		err = runReport(os.Args[2:], log)
	case "plot":
		err = runPlot(os.Args[2:], log)
	case "--version", "-version":
		fmt.Println(version)
		return
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error(pkg+"command failed", "error", err.Error())
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hdr10plus <extract|inject|remove|editor|report|plot> [flags]")
}

func newLogger() logging.Logger {
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	return logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
}
