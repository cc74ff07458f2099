/*
DESCRIPTION
  nal.go implements a chunked Annex-B HEVC NAL unit scanner. It stands in
  for the external NAL splitter/frame assembler that the extract, inject
  and remove commands depend on but which is deliberately left
  unspecified in detail.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package hevcstream scans an Annex-B HEVC elementary stream into NAL
// units in ~100KB chunks, groups consecutive NAL units into access units,
// and derives the decode-order-to-presentation-order mapping from each
// access unit's Picture Order Count.
//
// This is an internal stand-in: the tool's specification treats the NAL
// splitter and frame assembler as an external collaborator with a fixed
// streaming contract, not a component to design in detail. Nothing outside
// this module's own commands depends on hevcstream directly.
package hevcstream

// HEVC NAL unit type constants (ITU-T H.265 Table 7-1), the subset this
// package's commands need.
const (
	NALTypeTrailN    = 0
	NALTypeTrailR    = 1
	NALTypeTSAN      = 2
	NALTypeTSAR      = 3
	NALTypeSTSAN     = 4
	NALTypeSTSAR     = 5
	NALTypeRADLN     = 6
	NALTypeRADLR     = 7
	NALTypeRASLN     = 8
	NALTypeRASLR     = 9
	NALTypeBLAWLP    = 16
	NALTypeBLAWRADL  = 17
	NALTypeBLANLP    = 18
	NALTypeIDRWRADL  = 19
	NALTypeIDRNLP    = 20
	NALTypeCRANUT    = 21
	NALTypeVPS       = 32
	NALTypeSPS       = 33
	NALTypePPS       = 34
	NALTypeAUD       = 35
	NALTypeEOS       = 36
	NALTypeEOB       = 37
	NALTypeFillerData = 38
	NALTypeSEIPrefix = 39
	NALTypeSEISuffix = 40
)

// IsSlice reports whether nalType is a VCL (coded slice) NAL unit type.
func IsSlice(nalType uint8) bool {
	return nalType <= NALTypeRASLR || (nalType >= NALTypeBLAWLP && nalType <= NALTypeCRANUT)
}

// IsIRAP reports whether nalType is an intra random access point slice
// (BLA, IDR or CRA).
func IsIRAP(nalType uint8) bool {
	return nalType >= NALTypeBLAWLP && nalType <= NALTypeCRANUT
}

// IsIDR reports whether nalType is an IDR slice, whose Picture Order Count
// is always zero and which carries no slice_pic_order_cnt_lsb field.
func IsIDR(nalType uint8) bool {
	return nalType == NALTypeIDRWRADL || nalType == NALTypeIDRNLP
}

// NAL describes one NAL unit found within a chunk buffer, following the
// external framer contract: Start/End bound the NAL's payload (header
// through the last payload byte, exclusive of the start code) within the
// chunk buffer handed to the scan callback, and StartCodeLen is 3 or 4.
type NAL struct {
	Type              uint8
	Start             int
	End               int
	StartCodeLen      int
	DecodedFrameIndex int
}

// nalHeaderType extracts the 6-bit nal_unit_type from an HEVC NAL's first
// header byte: forbidden_zero_bit(1) | nal_unit_type(6) | nuh_layer_id_msb(1).
func nalHeaderType(firstByte byte) uint8 {
	return (firstByte >> 1) & 0x3F
}

// findStartCodes scans buf and returns, for every Annex-B start code found,
// the offset of the code's first 0x00 byte and the length of the code (3
// or 4).
func findStartCodes(buf []byte) []struct{ pos, length int } {
	var out []struct{ pos, length int }
	n := len(buf)
	i := 0
	for i+2 < n {
		if buf[i] == 0 && buf[i+1] == 0 {
			if i+3 < n && buf[i+2] == 0 && buf[i+3] == 1 {
				out = append(out, struct{ pos, length int }{i, 4})
				i += 4
				continue
			}
			if buf[i+2] == 1 {
				out = append(out, struct{ pos, length int }{i, 3})
				i += 3
				continue
			}
		}
		i++
	}
	return out
}

// splitComplete scans buf for every NAL unit that is fully bounded by two
// start codes (or one start code and the end of buf, when keepTail is
// false — the caller passes true while more data may still arrive).
// It returns the found NALs (Start/End relative to buf, decode order,
// DecodedFrameIndex left zero for the caller to assign) and the offset in
// buf at which scanning should resume on the next call (the start of the
// last, possibly-incomplete, start code run).
func splitComplete(buf []byte, keepTail bool) (nals []NAL, resumeAt int) {
	codes := findStartCodes(buf)
	if len(codes) == 0 {
		return nil, 0
	}

	limit := len(codes)
	if keepTail {
		limit-- // the last start code may be followed by a NAL continued in the next chunk
	}
	for i := 0; i < limit; i++ {
		dataStart := codes[i].pos + codes[i].length
		dataEnd := len(buf)
		if i+1 < len(codes) {
			dataEnd = codes[i+1].pos
		}
		if dataStart >= dataEnd {
			continue
		}
		nals = append(nals, NAL{
			Type:         nalHeaderType(buf[dataStart]),
			Start:        dataStart,
			End:          dataEnd,
			StartCodeLen: codes[i].length,
		})
	}

	if keepTail {
		return nals, codes[len(codes)-1].pos
	}
	return nals, len(buf)
}
