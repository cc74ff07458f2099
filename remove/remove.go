/*
DESCRIPTION
  remove.go strips ST-2094-40 dynamic metadata from an HEVC Annex-B
  stream: a prefix SEI NAL carrying only an ST-2094-40 message is
  dropped entirely, one carrying other messages besides it has just
  that message excised, and every other NAL is copied through
  unchanged.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package remove implements the single-pass HDR10+ metadata remover.
package remove

import (
	"io"

	"github.com/ausocean/hdr10plus/internal/hevcstream"
	"github.com/ausocean/hdr10plus/rbsp"
	"github.com/ausocean/hdr10plus/sei"
	"github.com/pkg/errors"
)

// DefaultOutputName is the output filename the CLI uses when the user
// does not provide --output.
const DefaultOutputName = "hdr10plus_removed_output.hevc"

var startCode4 = []byte{0x00, 0x00, 0x00, 0x01}

// Remove copies r to w, dropping or shortening every ST-2094-40 prefix
// SEI NAL it finds. It reports the number of NALs dropped entirely and
// the number shortened by message excision.
func Remove(r io.Reader, w io.Writer) (dropped, shortened int, err error) {
	scanErr := hevcstream.Scan(r, hevcstream.DefaultChunkSize, func(nals []hevcstream.NAL, chunk []byte) error {
		for _, n := range nals {
			if n.Type != hevcstream.NALTypeSEIPrefix || n.End-n.Start < 2 {
				if err := writeNAL(w, chunk[n.Start:n.End]); err != nil {
					return errors.Wrap(err, "remove: writing NAL")
				}
				continue
			}

			rbspPayload := rbsp.Strip(chunk[n.Start+2 : n.End])
			found, newPayload := sei.StripMessage(rbspPayload)
			switch {
			case !found:
				if err := writeNAL(w, chunk[n.Start:n.End]); err != nil {
					return errors.Wrap(err, "remove: writing NAL")
				}
			case newPayload == nil:
				dropped++
			default:
				shortened++
				nalBytes := rebuildSEINAL(chunk[n.Start:n.End], newPayload)
				if err := writeNAL(w, nalBytes); err != nil {
					return errors.Wrap(err, "remove: writing shortened SEI NAL")
				}
			}
		}
		return nil
	})
	if scanErr != nil {
		return dropped, shortened, errors.Wrap(scanErr, "remove: scanning stream")
	}
	return dropped, shortened, nil
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

func writeNAL(w io.Writer, data []byte) error {
	if _, err := w.Write(startCode4); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
