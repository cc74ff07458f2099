/*
DESCRIPTION
  sps.go parses only the SPS and PPS fields Picture Order Count derivation
  needs: the POC LSB bit width, the chroma separate-plane flag, the
  number of extra slice header bits, and whether pic_output_flag is
  present. It is not a general SPS/PPS decoder.

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

// SPSInfo holds the SPS fields needed to decode slice_pic_order_cnt_lsb.
type SPSInfo struct {
	log2MaxPicOrderCntLsb uint
	separateColourPlane   bool
}

// ParseSPS parses an HEVC SPS NAL's RBSP (the 2-byte NAL header already
// stripped, emulation prevention not yet stripped).
func ParseSPS(nalPayload []byte) (SPSInfo, error) {
	rbsp := removeEmulationPrevention(nalPayload)
	br := newBitReader(rbsp)

	if _, err := br.readBits(4); err != nil { // sps_video_parameter_set_id
		return SPSInfo{}, err
	}
	maxSubLayersMinus1, err := br.readBits(3) // sps_max_sub_layers_minus1
	if err != nil {
		return SPSInfo{}, err
	}
	if _, err := br.readBits(1); err != nil { // sps_temporal_id_nesting_flag
		return SPSInfo{}, err
	}
	if err := skipProfileTierLevel(br, maxSubLayersMinus1); err != nil {
		return SPSInfo{}, err
	}
	if _, err := br.readUE(); err != nil { // sps_seq_parameter_set_id
		return SPSInfo{}, err
	}
	chromaFormatIdc, err := br.readUE()
	if err != nil {
		return SPSInfo{}, err
	}
	var info SPSInfo
	if chromaFormatIdc == 3 {
		v, err := br.readBits(1) // separate_colour_plane_flag
		if err != nil {
			return SPSInfo{}, err
		}
		info.separateColourPlane = v == 1
	}
	if _, err := br.readUE(); err != nil { // pic_width_in_luma_samples
		return SPSInfo{}, err
	}
	if _, err := br.readUE(); err != nil { // pic_height_in_luma_samples
		return SPSInfo{}, err
	}
	confWindow, err := br.readBits(1) // conformance_window_flag
	if err != nil {
		return SPSInfo{}, err
	}
	if confWindow == 1 {
		for i := 0; i < 4; i++ {
			if _, err := br.readUE(); err != nil {
				return SPSInfo{}, err
			}
		}
	}
	if _, err := br.readUE(); err != nil { // bit_depth_luma_minus8
		return SPSInfo{}, err
	}
	if _, err := br.readUE(); err != nil { // bit_depth_chroma_minus8
		return SPSInfo{}, err
	}
	log2MaxPocLsbMinus4, err := br.readUE() // log2_max_pic_order_cnt_lsb_minus4
	if err != nil {
		return SPSInfo{}, err
	}
	info.log2MaxPicOrderCntLsb = log2MaxPocLsbMinus4 + 4

	return info, nil
}

func skipProfileTierLevel(br *bitReader, maxSubLayersMinus1 uint) error {
	// general_profile_space(2) + general_tier_flag(1) + general_profile_idc(5)
	if _, err := br.readBits(8); err != nil {
		return err
	}
	// general_profile_compatibility_flags(32)
	if _, err := br.readBits(32); err != nil {
		return err
	}
	// general_*_constraint_flag and reserved bits (48)
	for i := 0; i < 6; i++ {
		if _, err := br.readBits(8); err != nil {
			return err
		}
	}
	// general_level_idc(8)
	if _, err := br.readBits(8); err != nil {
		return err
	}

	if maxSubLayersMinus1 == 0 {
		return nil
	}

	subLayerProfilePresent := make([]bool, maxSubLayersMinus1)
	subLayerLevelPresent := make([]bool, maxSubLayersMinus1)
	for i := uint(0); i < maxSubLayersMinus1; i++ {
		pp, err := br.readBits(1)
		if err != nil {
			return err
		}
		subLayerProfilePresent[i] = pp == 1
		lp, err := br.readBits(1)
		if err != nil {
			return err
		}
		subLayerLevelPresent[i] = lp == 1
	}
	if maxSubLayersMinus1 < 8 {
		for i := maxSubLayersMinus1; i < 8; i++ {
			if _, err := br.readBits(2); err != nil {
				return err
			}
		}
	}
	for i := uint(0); i < maxSubLayersMinus1; i++ {
		if subLayerProfilePresent[i] {
			if _, err := br.readBits(32); err != nil {
				return err
			}
			if _, err := br.readBits(32); err != nil {
				return err
			}
			if _, err := br.readBits(24); err != nil {
				return err
			}
		}
		if subLayerLevelPresent[i] {
			if _, err := br.readBits(8); err != nil {
				return err
			}
		}
	}
	return nil
}

// PPSInfo holds the PPS fields needed to skip to slice_pic_order_cnt_lsb.
type PPSInfo struct {
	numExtraSliceHeaderBits uint
	outputFlagPresent       bool
}

// ParsePPS parses an HEVC PPS NAL's RBSP (the 2-byte NAL header already
// stripped).
func ParsePPS(nalPayload []byte) (PPSInfo, error) {
	rbsp := removeEmulationPrevention(nalPayload)
	br := newBitReader(rbsp)

	if _, err := br.readUE(); err != nil { // pps_pic_parameter_set_id
		return PPSInfo{}, err
	}
	if _, err := br.readUE(); err != nil { // pps_seq_parameter_set_id
		return PPSInfo{}, err
	}
	if _, err := br.readBits(1); err != nil { // dependent_slice_segments_enabled_flag
		return PPSInfo{}, err
	}
	outputFlag, err := br.readBits(1) // output_flag_present_flag
	if err != nil {
		return PPSInfo{}, err
	}
	numExtra, err := br.readBits(3) // num_extra_slice_header_bits
	if err != nil {
		return PPSInfo{}, err
	}

	return PPSInfo{numExtraSliceHeaderBits: numExtra, outputFlagPresent: outputFlag == 1}, nil
}
