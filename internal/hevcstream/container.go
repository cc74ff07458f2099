/*
DESCRIPTION
  container.go rejects Matroska input early with a distinguishable
  error, rather than letting it fall through to the generic "no NAL
  units found" failure a non-Annex-B byte stream would otherwise
  produce.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package hevcstream

import "github.com/pkg/errors"

// ErrUnsupportedContainer is returned by CheckAnnexB when the input
// looks like a Matroska/EBML container rather than a raw Annex-B HEVC
// elementary stream, which spec.md's commands do not support.
var ErrUnsupportedContainer = errors.New("hevcstream: Matroska container is not supported, expected a raw Annex-B HEVC elementary stream")

// matroskaMagic is the 4-byte EBML header every Matroska file starts with.
var matroskaMagic = [4]byte{0x1A, 0x45, 0xDF, 0xA3}

// CheckAnnexB reports ErrUnsupportedContainer if the stream's first
// bytes (as already peeked by the caller) are the Matroska/EBML magic
// number.
func CheckAnnexB(peeked []byte) error {
	if len(peeked) < len(matroskaMagic) {
		return nil
	}
	for i, b := range matroskaMagic {
		if peeked[i] != b {
			return nil
		}
	}
	return ErrUnsupportedContainer
}
