/*
DESCRIPTION
  inject.go implements the two-pass HDR10+ injector: pass one derives the
  decode-to-presentation mapping, pass two interleaves one ST-2094-40 SEI
  NAL before the first slice of every access unit, replacing any
  pre-existing ST-2094-40 SEI already present.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package inject merges a JSON metadata timeline into an HEVC Annex-B
// stream, writing one ST-2094-40 SEI NAL per access unit.
package inject

import (
	"io"

	"github.com/ausocean/hdr10plus/internal/hevcstream"
	"github.com/ausocean/hdr10plus/metadata"
	"github.com/ausocean/hdr10plus/rbsp"
	"github.com/ausocean/hdr10plus/sei"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

var startCode4 = []byte{0x00, 0x00, 0x00, 0x01}

// Options configures an injection run.
type Options struct {
	// Validate asks each record to be validated as it's encoded, failing
	// the whole run on the first invalid record.
	Validate bool
}

type bufferedNAL struct {
	data         []byte // 2-byte NAL header through payload, no start code
	isFirstSlice bool
}

// Inject reads mappingSrc (pass 1, to derive decode order) and streamSrc
// (pass 2, the same stream content, re-opened or re-seeked by the
// caller) and writes an HEVC stream to w with records interleaved one
// per access unit, in presentation order.
func Inject(mappingSrc, streamSrc io.Reader, w io.Writer, records []*metadata.Record, opts Options, log logging.Logger) error {
	presentationOf, numFrames, err := framePresentationMapping(mappingSrc)
	if err != nil {
		return errors.Wrap(err, "inject: pass 1 deriving frame order")
	}

	var (
		buf        []bufferedNAL
		curDecoded = -1
		lastSEINAL []byte
	)

	finalize := func() error {
		if len(buf) == 0 {
			return nil
		}
		defer func() { buf = buf[:0] }()

		pos, ok := presentationOf[curDecoded]
		if !ok {
			return errors.Errorf("inject: missing presentation mapping for decoded frame %d", curDecoded)
		}

		var seiNAL []byte
		switch {
		case pos < len(records):
			rec := records[pos]
			payload, err := rec.Encode(opts.Validate)
			if err != nil {
				return errors.Wrapf(err, "inject: encoding record for presentation number %d", pos)
			}
			nal, err := sei.Frame(payload, firstSliceTemporalID(buf))
			if err != nil {
				return errors.Wrapf(err, "inject: framing SEI for presentation number %d", pos)
			}
			seiNAL = nal
			lastSEINAL = nal
		case len(records) < numFrames:
			// M < V: records exhausted, repeat the last written SEI NAL.
			if lastSEINAL == nil {
				return errors.Errorf("inject: no record for presentation number %d and no prior SEI to repeat", pos)
			}
			seiNAL = lastSEINAL
			log.Warning("inject: JSON record count less than video frame count, repeating last SEI", "presentationNumber", pos)
		default:
			// M == V and counts otherwise agree: a missing record here is fatal.
			return errors.Errorf("inject: no record for presentation number %d under strict mapping", pos)
		}

		insertIdx := len(buf)
		for i, n := range buf {
			if n.isFirstSlice {
				insertIdx = i
				break
			}
		}
		for i, n := range buf {
			if i == insertIdx {
				if err := writeNAL(w, seiNAL); err != nil {
					return errors.Wrap(err, "inject: writing SEI NAL")
				}
			}
			if err := writeNAL(w, n.data); err != nil {
				return errors.Wrap(err, "inject: writing NAL")
			}
		}
		if insertIdx == len(buf) {
			if err := writeNAL(w, seiNAL); err != nil {
				return errors.Wrap(err, "inject: writing SEI NAL")
			}
		}
		return nil
	}

	scanErr := hevcstream.Scan(streamSrc, hevcstream.DefaultChunkSize, func(nals []hevcstream.NAL, chunk []byte) error {
		for _, n := range nals {
			if n.DecodedFrameIndex != curDecoded {
				if curDecoded >= 0 {
					if err := finalize(); err != nil {
						return err
					}
				}
				curDecoded = n.DecodedFrameIndex
			}

			if n.Type == hevcstream.NALTypeSEIPrefix && n.End-n.Start >= 2 {
				rbspPayload := rbsp.Strip(chunk[n.Start+2 : n.End])
				if found, newPayload := sei.StripMessage(rbspPayload); found {
					if newPayload != nil {
						// Other SEI messages share this NAL: keep them,
						// excising only the ST-2094-40 message this access
						// unit's SEI is rebuilt from records instead.
						buf = append(buf, bufferedNAL{data: rebuildSEINAL(chunk[n.Start:n.End], newPayload)})
					}
					continue // sole message: the whole NAL is dropped
				}
			}

			buf = append(buf, bufferedNAL{
				data:         append([]byte{}, chunk[n.Start:n.End]...),
				isFirstSlice: hevcstream.IsSlice(n.Type) && isFirstSliceSegment(chunk, n),
			})
		}
		return nil
	})
	if scanErr != nil {
		return errors.Wrap(scanErr, "inject: pass 2 scanning stream")
	}

	return finalize()
}

// framePresentationMapping runs a first pass over r building the
// decoded-to-presentation number mapping (same machinery extract uses)
// and reports the total number of video frames (access units) seen.
func framePresentationMapping(r io.Reader) (map[int]int, int, error) {
	var (
		units   []hevcstream.AccessUnit
		sps     hevcstream.SPSInfo
		pps     hevcstream.PPSInfo
		haveSPS bool
		havePPS bool
		seenAU  = map[int]bool{}
	)

	err := hevcstream.Scan(r, hevcstream.DefaultChunkSize, func(nals []hevcstream.NAL, chunk []byte) error {
		for _, n := range nals {
			switch n.Type {
			case hevcstream.NALTypeSPS:
				if n.End-n.Start >= 2 {
					if s, err := hevcstream.ParseSPS(chunk[n.Start+2 : n.End]); err == nil {
						sps, haveSPS = s, true
					}
				}
			case hevcstream.NALTypePPS:
				if n.End-n.Start >= 2 {
					if p, err := hevcstream.ParsePPS(chunk[n.Start+2 : n.End]); err == nil {
						pps, havePPS = p, true
					}
				}
			}
			if hevcstream.IsSlice(n.Type) && haveSPS && havePPS && !seenAU[n.DecodedFrameIndex] && isFirstSliceSegment(chunk, n) {
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
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	ordered, err := hevcstream.OrderedFrames(units)
	if err != nil {
		return nil, 0, errors.Wrap(err, "inject: deriving presentation order")
	}
	mapping := make(map[int]int, len(ordered))
	for _, o := range ordered {
		mapping[o.DecodedNumber] = o.PresentationNumber
	}
	return mapping, len(ordered), nil
}

func writeNAL(w io.Writer, data []byte) error {
	if _, err := w.Write(startCode4); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// rebuildSEINAL reassembles a prefix SEI NAL from the original NAL's
// 2-byte header and a replacement RBSP payload (emulation prevention
// already re-applied by sei.StripMessage).
func rebuildSEINAL(original []byte, newRBSP []byte) []byte {
	out := make([]byte, 0, 2+len(newRBSP))
	out = append(out, original[:2]...)
	out = append(out, newRBSP...)
	return out
}

// isFirstSliceSegment reports whether n's RBSP opens with
// first_slice_segment_in_pic_flag set.
func isFirstSliceSegment(chunk []byte, n hevcstream.NAL) bool {
	rbspStart := n.Start + 2
	if rbspStart >= n.End {
		return false
	}
	return chunk[rbspStart]&0x80 != 0
}

// firstSliceTemporalID returns nuh_temporal_id_plus1-1 of the access
// unit's first slice NAL, or 0 if none is buffered yet.
func firstSliceTemporalID(buf []bufferedNAL) uint8 {
	for _, n := range buf {
		if n.isFirstSlice && len(n.data) >= 2 {
			return (n.data[1] & 0x7) - 1
		}
	}
	return 0
}
