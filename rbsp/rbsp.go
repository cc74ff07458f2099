/*
DESCRIPTION
  rbsp.go implements HEVC emulation prevention byte insertion and removal,
  converting between RBSP (raw byte sequence payload) and the EBSP (encoded
  byte sequence payload) form that is actually written into a NAL unit.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rbsp inserts and strips emulation-prevention bytes in HEVC NAL
// unit payloads so that no three-byte window ever collides with a start
// code (0x000000, 0x000001, 0x000002 or 0x000003).
package rbsp

// Insert scans src and returns a copy with an emulation-prevention byte
// (0x03) inserted after every two-byte run of 0x00 0x00 that is followed by
// a byte of 0x00, 0x01, 0x02 or 0x03. This must be applied to the entire
// NAL unit, including its two-byte header, before the start code is
// prefixed, matching add_start_code_emulation_prevention_3_byte in the
// reference ST-2094-40 encoder.
func Insert(src []byte) []byte {
	dst := make([]byte, 0, len(src)+len(src)/3+1)
	zeros := 0
	for _, b := range src {
		if zeros >= 2 && b <= 0x03 {
			dst = append(dst, 0x03)
			zeros = 0
		}
		dst = append(dst, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return dst
}

// Strip removes emulation-prevention bytes from src, returning the
// original RBSP. It is the inverse of Insert: any 0x03 byte immediately
// following two consecutive 0x00 bytes is dropped.
func Strip(src []byte) []byte {
	dst := make([]byte, 0, len(src))
	zeros := 0
	for i := 0; i < len(src); i++ {
		b := src[i]
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		dst = append(dst, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return dst
}
