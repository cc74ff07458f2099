/*
DESCRIPTION
  editor.go edits a parsed JSON metadata timeline in place: removing
  frame ranges, then duplicating frames at given offsets, matching
  spec.md's corrected remove_frames/duplicate_metadata semantics (the
  reference implementation's remove_frames carries a cumulative-amount
  bug this package does not reproduce; see DESIGN.md).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package editor applies a remove/duplicate edit recipe to a parsed
// metadata timeline.
package editor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ausocean/hdr10plus/metadata"
	"github.com/pkg/errors"
)

// DuplicateMetadata describes one frame-duplication edit: length clones
// of records[Source] are inserted at position Offset.
type DuplicateMetadata struct {
	Source int `json:"source"`
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// EditConfig is the edit recipe read from the --json CONFIG file.
type EditConfig struct {
	Remove    []string            `json:"remove,omitempty"`
	Duplicate []DuplicateMetadata `json:"duplicate,omitempty"`
}

// Result reports how many edits were actually applied.
type Result struct {
	Removed    int
	Duplicated int
}

// Apply runs cfg against records, removing ranges first and then
// duplicating, and returns the edited timeline.
func Apply(records []*metadata.Record, cfg EditConfig) ([]*metadata.Record, Result, error) {
	var result Result

	records, removed, err := removeFrames(records, cfg.Remove)
	if err != nil {
		return nil, result, errors.Wrap(err, "editor: removing frames")
	}
	result.Removed = removed

	records, duplicated, err := duplicateFrames(records, cfg.Duplicate)
	if err != nil {
		return nil, result, errors.Wrap(err, "editor: duplicating frames")
	}
	result.Duplicated = duplicated

	return records, result, nil
}

// removeFrames applies each range string in cfg order against the
// current (post-previous-removal) list, removing end-start+1 elements
// starting at position start.
func removeFrames(records []*metadata.Record, ranges []string) ([]*metadata.Record, int, error) {
	removed := 0
	for _, rng := range ranges {
		start, end, err := parseRange(rng)
		if err != nil {
			return nil, 0, err
		}
		if end >= len(records) || start > end || start < 0 {
			return nil, 0, errors.Errorf("editor: invalid remove range %q for %d frames", rng, len(records))
		}
		count := end - start + 1
		records = append(records[:start], records[start+count:]...)
		removed += count
	}
	return records, removed, nil
}

// parseRange parses "N" as the single-element range [N,N] and "A-B" as
// the inclusive range [A,B].
func parseRange(rng string) (start, end int, err error) {
	if !strings.Contains(rng, "-") {
		n, err := strconv.Atoi(rng)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "editor: invalid remove index %q", rng)
		}
		return n, n, nil
	}

	parts := strings.SplitN(rng, "-", 2)
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "editor: invalid remove range %q", rng)
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "editor: invalid remove range %q", rng)
	}
	return start, end, nil
}

// duplicateFrames stable-sorts to_duplicate descending by Offset (so
// later offsets are processed first and don't shift earlier ones) and
// inserts Length clones of records[Source] at each Offset.
func duplicateFrames(records []*metadata.Record, toDuplicate []DuplicateMetadata) ([]*metadata.Record, int, error) {
	ordered := append([]DuplicateMetadata{}, toDuplicate...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Offset > ordered[j].Offset })

	duplicated := 0
	for _, d := range ordered {
		if d.Source < 0 || d.Source >= len(records) || d.Offset < 0 || d.Offset > len(records) {
			return nil, 0, errors.Errorf("editor: invalid duplicate entry %+v for %d frames", d, len(records))
		}

		clones := make([]*metadata.Record, d.Length)
		for i := range clones {
			clones[i] = cloneRecord(records[d.Source])
		}

		out := make([]*metadata.Record, 0, len(records)+d.Length)
		out = append(out, records[:d.Offset]...)
		out = append(out, clones...)
		out = append(out, records[d.Offset:]...)
		records = out
		duplicated += d.Length
	}
	return records, duplicated, nil
}

// cloneRecord returns an independent copy of rec so duplicated frames
// don't alias the source record.
func cloneRecord(rec *metadata.Record) *metadata.Record {
	cp := *rec
	return &cp
}
