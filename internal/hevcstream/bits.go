/*
DESCRIPTION
  bits.go is a minimal exp-Golomb bit reader used only to pull the handful
  of SPS, PPS and slice-header fields needed for Picture Order Count
  derivation; it is not a general RBSP parser.

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

import (
	"github.com/ausocean/hdr10plus/rbsp"
	"github.com/pkg/errors"
)

var errShortData = errors.New("hevcstream: NAL too short to parse required fields")

type bitReader struct {
	data []byte
	pos  int
	bit  int
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (br *bitReader) readBit() (uint, error) {
	if br.pos >= len(br.data) {
		return 0, errShortData
	}
	val := uint((br.data[br.pos] >> (7 - br.bit)) & 1)
	br.bit++
	if br.bit == 8 {
		br.bit = 0
		br.pos++
	}
	return val, nil
}

func (br *bitReader) readBits(n int) (uint, error) {
	var val uint
	for i := 0; i < n; i++ {
		b, err := br.readBit()
		if err != nil {
			return 0, err
		}
		val = val<<1 | b
	}
	return val, nil
}

func (br *bitReader) readUE() (uint, error) {
	zeros := 0
	for {
		b, err := br.readBit()
		if err != nil {
			return 0, err
		}
		if b == 1 {
			break
		}
		zeros++
		if zeros > 31 {
			return 0, errShortData
		}
	}
	if zeros == 0 {
		return 0, nil
	}
	suffix, err := br.readBits(zeros)
	if err != nil {
		return 0, err
	}
	return (1 << uint(zeros)) - 1 + suffix, nil
}

// removeEmulationPrevention strips 0x03 emulation-prevention bytes ahead of
// an RBSP parse.
func removeEmulationPrevention(data []byte) []byte {
	return rbsp.Strip(data)
}
