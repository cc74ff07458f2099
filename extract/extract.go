/*
DESCRIPTION
  extract.go scans an HEVC Annex-B elementary stream for ST-2094-40
  dynamic metadata, reorders captured payloads into presentation order,
  and emits the JSON timeline document.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package extract implements the extractor (C6): scanning an HEVC
// stream for ST-2094-40 SEI messages, reordering them into presentation
// order, and producing a JSON timeline document.
package extract

import (
	"io"

	"github.com/ausocean/hdr10plus/internal/hevcstream"
	"github.com/ausocean/hdr10plus/jsonmodel"
	"github.com/ausocean/hdr10plus/metadata"
	"github.com/ausocean/hdr10plus/rbsp"
	"github.com/ausocean/hdr10plus/sei"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Options configures an extraction run.
type Options struct {
	SkipValidation bool
	Verify         bool
	SkipReorder    bool
}

// ErrNoMetadataFound is returned when the stream contains no ST-2094-40
// SEI message.
var ErrNoMetadataFound = errors.New("extract: no ST-2094-40 metadata found in stream")

// VerifyResult is returned instead of a Document whenever Options.Verify
// is set; Found reports whether any ST-2094-40 metadata was seen. The
// caller is expected to report presence and stop, per spec.md's --verify
// short-circuit.
type VerifyResult struct {
	Found bool
}

type capturedPayload struct {
	decodedFrame int
	payload      []byte
}

// Extract scans r for ST-2094-40 metadata and returns the assembled
// JSON document, or a *VerifyResult if opts.Verify is set.
func Extract(r io.Reader, opts Options, log logging.Logger, tool, toolVersion string) (*jsonmodel.Document, *VerifyResult, error) {
	var (
		payloads []capturedPayload
		units    []hevcstream.AccessUnit
		sps      hevcstream.SPSInfo
		pps      hevcstream.PPSInfo
		haveSPS  bool
		havePPS  bool
		seenAU   = map[int]bool{}
	)

	scanErr := hevcstream.Scan(r, hevcstream.DefaultChunkSize, func(nals []hevcstream.NAL, chunk []byte) error {
		for _, n := range nals {
			switch n.Type {
			case hevcstream.NALTypeSPS:
				if n.End-n.Start < 2 {
					continue
				}
				s, err := hevcstream.ParseSPS(chunk[n.Start+2 : n.End])
				if err != nil {
					log.Warning("extract: failed to parse SPS, POC reordering may be unreliable", "error", err)
					continue
				}
				sps, haveSPS = s, true
			case hevcstream.NALTypePPS:
				if n.End-n.Start < 2 {
					continue
				}
				p, err := hevcstream.ParsePPS(chunk[n.Start+2 : n.End])
				if err != nil {
					log.Warning("extract: failed to parse PPS, POC reordering may be unreliable", "error", err)
					continue
				}
				pps, havePPS = p, true
			case hevcstream.NALTypeSEIPrefix:
				if err := handleSEINAL(chunk, n, &payloads, log); err != nil {
					return err
				}
				if opts.Verify && len(payloads) > 0 {
					return errVerifyShortCircuit
				}
			}

			if !opts.SkipReorder && hevcstream.IsSlice(n.Type) && haveSPS && havePPS && !seenAU[n.DecodedFrameIndex] {
				if isFirstSliceSegment(chunk, n) {
					seenAU[n.DecodedFrameIndex] = true
					units = append(units, hevcstream.AccessUnit{
						DecodedNumber: n.DecodedFrameIndex,
						NALType:       n.Type,
						Payload:       append([]byte{}, chunk[n.Start:n.End]...),
						SPS:           sps,
						PPS:           pps,
					})
				}
			}
		}
		return nil
	})
	if scanErr != nil && scanErr != errVerifyShortCircuit {
		return nil, nil, errors.Wrap(scanErr, "extract: scanning stream")
	}

	if opts.Verify {
		return nil, &VerifyResult{Found: len(payloads) > 0}, nil
	}
	if len(payloads) == 0 {
		return nil, nil, ErrNoMetadataFound
	}

	records := make([]*metadata.Record, len(payloads))
	for i, p := range payloads {
		// p.payload was excised from an already-stripped SEI RBSP in
		// handleSEINAL, so it carries no emulation prevention bytes.
		rec, err := metadata.Parse(p.payload)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "extract: parsing metadata for decoded frame %d", p.decodedFrame)
		}
		if !opts.SkipValidation {
			if err := rec.Validate(); err != nil {
				return nil, nil, errors.Wrapf(err, "extract: validating metadata for decoded frame %d", p.decodedFrame)
			}
		}
		records[i] = rec
	}

	if !opts.SkipReorder {
		ordered, err := hevcstream.OrderedFrames(units)
		if err != nil {
			return nil, nil, errors.Wrap(err, "extract: deriving presentation order")
		}
		presentationOf := make(map[int]int, len(ordered))
		for _, o := range ordered {
			presentationOf[o.DecodedNumber] = o.PresentationNumber
		}

		reordered := make([]*metadata.Record, len(records))
		for i, p := range payloads {
			pos, ok := presentationOf[p.decodedFrame]
			if !ok {
				return nil, nil, errors.Errorf("extract: missing presentation mapping for decoded frame %d", p.decodedFrame)
			}
			if pos < 0 || pos >= len(reordered) {
				return nil, nil, errors.Errorf("extract: presentation number %d out of range for %d records", pos, len(reordered))
			}
			reordered[pos] = records[i]
		}
		records = reordered
	}

	doc, err := jsonmodel.FromRecords(records, tool, toolVersion)
	if err != nil {
		if _, ok := err.(*jsonmodel.ProfileMismatchError); ok {
			log.Warning("extract: timeline records are not all profile A or all profile B")
		}
		return nil, nil, err
	}
	return doc, nil, nil
}

// errVerifyShortCircuit is a sentinel used to stop hevcstream.Scan as
// soon as the first ST-2094-40 message is confirmed in --verify mode;
// it is not surfaced to the caller.
var errVerifyShortCircuit = errors.New("extract: verify short-circuit")

func handleSEINAL(chunk []byte, n hevcstream.NAL, payloads *[]capturedPayload, log logging.Logger) error {
	if n.End-n.Start < 2 {
		return nil
	}
	rbspPayload := rbsp.Strip(chunk[n.Start+2 : n.End])
	msg, ok := sei.Detect(rbspPayload, true)
	if !ok {
		return nil
	}
	payload := append([]byte{}, rbspPayload[msg.PayloadOffset:msg.PayloadOffset+msg.PayloadSize]...)
	*payloads = append(*payloads, capturedPayload{decodedFrame: n.DecodedFrameIndex, payload: payload})
	log.Debug("extract: found ST-2094-40 SEI", "decodedFrame", n.DecodedFrameIndex)
	return nil
}

// isFirstSliceSegment reports whether n's RBSP opens with
// first_slice_segment_in_pic_flag set, the same test hevcstream.Scan
// uses to detect new access units.
func isFirstSliceSegment(chunk []byte, n hevcstream.NAL) bool {
	rbspStart := n.Start + 2
	if rbspStart >= n.End {
		return false
	}
	return chunk[rbspStart]&0x80 != 0
}
