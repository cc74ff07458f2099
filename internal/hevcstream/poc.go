/*
DESCRIPTION
  poc.go derives each access unit's Picture Order Count from its first
  slice segment header and SPS/PPS, then maps decode order to
  presentation order, the minimal contract spec.md's ordered_frames()
  requires of its external frame assembler.

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

import "sort"

// pocState tracks the running MSB/LSB values needed to derive Picture
// Order Count for non-IRAP slices, per H.265 8.3.1.
type pocState struct {
	prevPicOrderCntLsb int
	prevPicOrderCntMsb int
}

// derivePOC returns the Picture Order Count of a slice with the given
// nalType and slice_pic_order_cnt_lsb value (ignored for IDR slices,
// which are always POC 0), updating state for the next call.
//
// This assumes NoRaslOutputFlag is 1 for every IRAP picture, a
// simplification suitable for a single-layer, single-stream tool: it
// does not track the "no RASL output" conditions that depend on prior
// decoder state such as an external reset request.
func derivePOC(state *pocState, nalType uint8, lsb int, maxPicOrderCntLsb int) int {
	if IsIDR(nalType) {
		state.prevPicOrderCntLsb = 0
		state.prevPicOrderCntMsb = 0
		return 0
	}

	if IsIRAP(nalType) {
		// BLA/CRA with NoRaslOutputFlag == 1: PicOrderCntMsb is 0.
		state.prevPicOrderCntLsb = lsb
		state.prevPicOrderCntMsb = 0
		return lsb
	}

	prevLsb := state.prevPicOrderCntLsb
	prevMsb := state.prevPicOrderCntMsb

	var msb int
	switch {
	case lsb < prevLsb && prevLsb-lsb >= maxPicOrderCntLsb/2:
		msb = prevMsb + maxPicOrderCntLsb
	case lsb > prevLsb && lsb-prevLsb > maxPicOrderCntLsb/2:
		msb = prevMsb - maxPicOrderCntLsb
	default:
		msb = prevMsb
	}

	poc := msb + lsb

	state.prevPicOrderCntLsb = lsb
	state.prevPicOrderCntMsb = msb

	return poc
}

// parseSliceHeaderPOC parses only as much of a slice segment header as
// is needed to recover slice_pic_order_cnt_lsb (0 for IDR slices, which
// carry no such field).
func parseSliceHeaderPOC(nalPayload []byte, nalType uint8, sps SPSInfo, pps PPSInfo) (int, error) {
	rbsp := removeEmulationPrevention(nalPayload)
	br := newBitReader(rbsp)

	firstSlice, err := br.readBits(1) // first_slice_segment_in_pic_flag
	if err != nil {
		return 0, err
	}
	if firstSlice != 1 {
		// Not the first slice segment of its access unit; the caller is
		// expected to only call this on access-unit-opening slices.
		return 0, errShortData
	}

	if IsIRAP(nalType) {
		if _, err := br.readBits(1); err != nil { // no_output_of_prior_pics_flag
			return 0, err
		}
	}
	if _, err := br.readUE(); err != nil { // slice_pic_parameter_set_id
		return 0, err
	}
	if pps.numExtraSliceHeaderBits > 0 {
		if _, err := br.readBits(int(pps.numExtraSliceHeaderBits)); err != nil {
			return 0, err
		}
	}
	if _, err := br.readUE(); err != nil { // slice_type
		return 0, err
	}
	if pps.outputFlagPresent {
		if _, err := br.readBits(1); err != nil { // pic_output_flag
			return 0, err
		}
	}
	if sps.separateColourPlane {
		if _, err := br.readBits(2); err != nil { // colour_plane_id
			return 0, err
		}
	}

	if IsIDR(nalType) {
		return 0, nil
	}

	lsb, err := br.readBits(int(sps.log2MaxPicOrderCntLsb))
	if err != nil {
		return 0, err
	}
	return int(lsb), nil
}

// FrameOrder pairs an access unit's decode-order index with the
// presentation-order index derived from its Picture Order Count,
// matching spec.md's ordered_frames() contract.
type FrameOrder struct {
	DecodedNumber      int
	PresentationNumber int
}

// AccessUnit is the minimal per-access-unit input OrderedFrames needs:
// the first slice segment NAL's type and payload (2-byte NAL header
// still included, emulation prevention not yet stripped), plus the SPS
// and PPS that slice refers to.
type AccessUnit struct {
	DecodedNumber int
	NALType       uint8
	Payload       []byte
	SPS           SPSInfo
	PPS           PPSInfo
}

// OrderedFrames derives each access unit's Picture Order Count in
// decode order and returns one decode-to-presentation pair per access
// unit. PresentationNumber is the unit's rank by POC; ties (equal POC)
// keep their relative decode order. The returned slice is sorted by
// DecodedNumber.
func OrderedFrames(units []AccessUnit) ([]FrameOrder, error) {
	type decoded struct {
		decodedNumber int
		poc           int
	}

	var state pocState
	out := make([]decoded, 0, len(units))
	for _, u := range units {
		maxLsb := 1 << u.SPS.log2MaxPicOrderCntLsb
		// Skip the 2-byte NAL header before parsing the slice header.
		payload := u.Payload
		if len(payload) >= 2 {
			payload = payload[2:]
		}
		lsb, err := parseSliceHeaderPOC(payload, u.NALType, u.SPS, u.PPS)
		if err != nil {
			return nil, err
		}
		poc := derivePOC(&state, u.NALType, lsb, maxLsb)
		out = append(out, decoded{decodedNumber: u.DecodedNumber, poc: poc})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].poc < out[j].poc })

	result := make([]FrameOrder, len(out))
	for presentationIdx, d := range out {
		result[presentationIdx] = FrameOrder{DecodedNumber: d.decodedNumber, PresentationNumber: presentationIdx}
	}
	// Restore decode order in the returned slice so callers can index it
	// by decoded number directly.
	sort.Slice(result, func(i, j int) bool { return result[i].DecodedNumber < result[j].DecodedNumber })

	return result, nil
}
