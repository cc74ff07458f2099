package inject

import (
	"bytes"
	"math/bits"
	"testing"

	"github.com/ausocean/hdr10plus/bitio"
	"github.com/ausocean/hdr10plus/internal/hevcstream"
	"github.com/ausocean/hdr10plus/metadata"
	"github.com/ausocean/hdr10plus/rbsp"
	"github.com/ausocean/hdr10plus/sei"
	"github.com/ausocean/utils/logging"
)

var startCode3 = []byte{0x00, 0x00, 0x01}

func testLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.New(logging.Debug, &bytes.Buffer{}, true) // Discard logs.
}

func buildStream(nals ...[]byte) []byte {
	var buf bytes.Buffer
	for _, n := range nals {
		buf.Write(startCode3)
		buf.Write(n)
	}
	return buf.Bytes()
}

func nalHeader(nalType uint8) []byte {
	return []byte{byte(nalType << 1), 0x01}
}

// putUE writes v as an Exp-Golomb ue(v) code.
func putUE(w *bitio.Writer, v uint64) {
	n := bits.Len64(v + 1)
	w.PutBits(0, n-1)
	w.PutBits(v+1, n)
}

// spsNAL builds a minimal SPS NAL with log2_max_pic_order_cnt_lsb == 4,
// chroma_format_idc == 1 (no separate colour plane), single sub-layer.
func spsNAL() []byte {
	w := bitio.NewWriter()
	w.PutBits(0, 4) // sps_video_parameter_set_id
	w.PutBits(0, 3) // sps_max_sub_layers_minus1
	w.PutBit(0)     // sps_temporal_id_nesting_flag
	w.PutBits(0, 8) // profile_space/tier/idc
	w.PutBits(0, 32)
	for i := 0; i < 6; i++ {
		w.PutBits(0, 8)
	}
	w.PutBits(0, 8) // general_level_idc
	putUE(w, 0)     // sps_seq_parameter_set_id
	putUE(w, 1)     // chroma_format_idc
	putUE(w, 1920)  // pic_width_in_luma_samples
	putUE(w, 1080)  // pic_height_in_luma_samples
	w.PutBit(0)     // conformance_window_flag
	putUE(w, 0)     // bit_depth_luma_minus8
	putUE(w, 0)     // bit_depth_chroma_minus8
	putUE(w, 0)     // log2_max_pic_order_cnt_lsb_minus4
	body := w.Finish()
	return rbsp.Insert(append(nalHeader(hevcstream.NALTypeSPS), body...))
}

// ppsNAL builds a minimal PPS NAL with num_extra_slice_header_bits == 0
// and output_flag_present_flag == false.
func ppsNAL() []byte {
	w := bitio.NewWriter()
	putUE(w, 0)     // pps_pic_parameter_set_id
	putUE(w, 0)     // pps_seq_parameter_set_id
	w.PutBit(0)     // dependent_slice_segments_enabled_flag
	w.PutBit(0)     // output_flag_present_flag
	w.PutBits(0, 3) // num_extra_slice_header_bits
	body := w.Finish()
	return rbsp.Insert(append(nalHeader(hevcstream.NALTypePPS), body...))
}

// firstSliceNAL builds a minimal IDR first-slice NAL matching an SPS/PPS
// pair built by spsNAL/ppsNAL (no extra header bits, no separate colour
// plane, no slice_pic_order_cnt_lsb since IDR slices carry none).
func firstSliceNAL() []byte {
	w := bitio.NewWriter()
	w.PutBool(true)  // first_slice_segment_in_pic_flag
	w.PutBool(false) // no_output_of_prior_pics_flag
	w.PutBit(1)      // slice_pic_parameter_set_id ue(0)
	w.PutBit(1)      // slice_type ue(0)
	body := w.Finish()
	return rbsp.Insert(append(nalHeader(hevcstream.NALTypeIDRWRADL), body...))
}

// recordWithID builds a minimal valid record whose AverageMaxRgb encodes
// its origin, so it can be identified after round-tripping through a NAL.
func recordWithID(id uint32) *metadata.Record {
	rec := &metadata.Record{
		ItuTT35CountryCode:                  0xB5,
		ItuTT35TerminalProviderCode:         0x3C,
		ItuTT35TerminalProviderOrientedCode: 1,
		ApplicationIdentifier:               4,
		ApplicationVersion:                  1,
		NumWindows:                          1,
		MaxScl:                              [3]uint32{50000, 45000, 40000},
		AverageMaxRgb:                       id,
		NumDistributionMaxRgbPercentiles:    9,
		DistributionMaxRgb: []metadata.DistributionMaxRgb{
			{Percentage: 1, Percentile: 1000},
			{Percentage: 5, Percentile: 2000},
			{Percentage: 10, Percentile: 3000},
			{Percentage: 25, Percentile: 4000},
			{Percentage: 50, Percentile: 5000},
			{Percentage: 75, Percentile: 6000},
			{Percentage: 90, Percentile: 7000},
			{Percentage: 95, Percentile: 8000},
			{Percentage: 99, Percentile: 9000},
		},
	}
	rec.SetProfile()
	return rec
}

func recordsWithIDs(ids ...uint32) []*metadata.Record {
	out := make([]*metadata.Record, len(ids))
	for i, id := range ids {
		out[i] = recordWithID(id)
	}
	return out
}

// parameterSets returns an SPS NAL followed by a PPS NAL, prepended to
// every test stream below so inject's pass 1 POC derivation has the
// fields it needs.
func parameterSets() [][]byte {
	return [][]byte{spsNAL(), ppsNAL()}
}

// extractedAverageRGBs scans out's prefix SEI NALs in stream order and
// decodes each ST-2094-40 record's AverageMaxRgb.
func extractedAverageRGBs(t *testing.T, out []byte) []uint32 {
	t.Helper()
	var got []uint32
	err := hevcstream.Scan(bytes.NewReader(out), hevcstream.DefaultChunkSize, func(nals []hevcstream.NAL, chunk []byte) error {
		for _, n := range nals {
			if n.Type != hevcstream.NALTypeSEIPrefix {
				continue
			}
			rbspPayload := rbsp.Strip(chunk[n.Start+2 : n.End])
			msg, ok := sei.Detect(rbspPayload, false)
			if !ok {
				continue
			}
			body := rbspPayload[msg.PayloadOffset : msg.PayloadOffset+msg.PayloadSize]
			rec, err := metadata.Parse(body)
			if err != nil {
				t.Fatalf("metadata.Parse: %v", err)
			}
			got = append(got, rec.AverageMaxRgb)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("hevcstream.Scan(out): %v", err)
	}
	return got
}

func nalTypesInOrder(t *testing.T, out []byte) []uint8 {
	t.Helper()
	var types []uint8
	err := hevcstream.Scan(bytes.NewReader(out), hevcstream.DefaultChunkSize, func(nals []hevcstream.NAL, chunk []byte) error {
		for _, n := range nals {
			types = append(types, n.Type)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("hevcstream.Scan(out): %v", err)
	}
	return types
}

func streamWith(slices ...[]byte) []byte {
	nals := append([][]byte{}, parameterSets()...)
	nals = append(nals, slices...)
	return buildStream(nals...)
}

func TestInjectOneRecordPerFrame(t *testing.T) {
	stream := streamWith(firstSliceNAL(), firstSliceNAL(), firstSliceNAL())
	records := recordsWithIDs(1000, 2000, 3000)

	var out bytes.Buffer
	err := Inject(bytes.NewReader(stream), bytes.NewReader(stream), &out, records, Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}

	got := extractedAverageRGBs(t, out.Bytes())
	want := []uint32{1000, 2000, 3000}
	if len(got) != len(want) {
		t.Fatalf("got %d SEI NALs; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d AverageMaxRgb = %d; want %d", i, got[i], want[i])
		}
	}
}

// TestInjectRepeatsLastRecordWhenShort covers the M < V case: fewer JSON
// records than video frames repeats the last written SEI NAL for the
// remaining frames, with a warning logged rather than a fatal error.
func TestInjectRepeatsLastRecordWhenShort(t *testing.T) {
	stream := streamWith(firstSliceNAL(), firstSliceNAL(), firstSliceNAL())
	records := recordsWithIDs(1000, 2000)

	var out bytes.Buffer
	err := Inject(bytes.NewReader(stream), bytes.NewReader(stream), &out, records, Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}

	got := extractedAverageRGBs(t, out.Bytes())
	want := []uint32{1000, 2000, 2000}
	if len(got) != len(want) {
		t.Fatalf("got %d SEI NALs; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d AverageMaxRgb = %d; want %d", i, got[i], want[i])
		}
	}
}

// TestInjectFatalWithNoRecordsAndNothingToRepeat covers the case where
// records are exhausted (or absent) and there is no prior SEI NAL to
// repeat: the injector must fail rather than silently write no metadata.
func TestInjectFatalWithNoRecordsAndNothingToRepeat(t *testing.T) {
	stream := streamWith(firstSliceNAL())
	err := Inject(bytes.NewReader(stream), bytes.NewReader(stream), &bytes.Buffer{}, nil, Options{}, testLogger(t))
	if err == nil {
		t.Fatal("Inject() err = nil; want error when no records and no prior SEI to repeat")
	}
}

func TestInjectInsertsSEIBeforeFirstSliceOnly(t *testing.T) {
	stream := streamWith(firstSliceNAL())
	records := recordsWithIDs(1000)

	var out bytes.Buffer
	err := Inject(bytes.NewReader(stream), bytes.NewReader(stream), &out, records, Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}

	nals := nalTypesInOrder(t, out.Bytes())
	want := []uint8{hevcstream.NALTypeSPS, hevcstream.NALTypePPS, hevcstream.NALTypeSEIPrefix, hevcstream.NALTypeIDRWRADL}
	if len(nals) != len(want) {
		t.Fatalf("got NAL types %v; want %v", nals, want)
	}
	for i := range want {
		if nals[i] != want[i] {
			t.Errorf("NAL %d type = %d; want %d", i, nals[i], want[i])
		}
	}
}

// TestInjectReplacesPreexistingST209440SEI covers a stream that already
// carries an HDR10+ SEI NAL: Inject must drop the pre-existing one and
// write only the record-derived replacement, not both.
func TestInjectReplacesPreexistingST209440SEI(t *testing.T) {
	oldPayload, err := recordWithID(9999).Encode(false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	oldSEI, err := sei.Frame(oldPayload, 0)
	if err != nil {
		t.Fatalf("sei.Frame: %v", err)
	}
	nals := append(parameterSets(), oldSEI, firstSliceNAL())
	stream := buildStream(nals...)
	records := recordsWithIDs(1000)

	var out bytes.Buffer
	err = Inject(bytes.NewReader(stream), bytes.NewReader(stream), &out, records, Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}

	got := extractedAverageRGBs(t, out.Bytes())
	want := []uint32{1000}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("AverageMaxRgb values = %v; want %v (old SEI must be dropped)", got, want)
	}
}

// TestInjectPreservesOtherMessagesInMixedSEINAL covers a prefix SEI NAL
// that carries other SEI messages alongside an ST-2094-40 one: only the
// ST-2094-40 message is replaced, and the other two messages come through
// bit-identical.
func TestInjectPreservesOtherMessagesInMixedSEINAL(t *testing.T) {
	other1 := []byte{0x05, 0x02, 0xAA, 0xBB}
	other2 := []byte{0x05, 0x02, 0xCC, 0xDD}
	oldPayload, err := recordWithID(9999).Encode(false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	st := append([]byte{4, byte(len(oldPayload))}, oldPayload...)
	rbspBody := append(append(append([]byte{}, other1...), st...), other2...)
	rbspBody = append(rbspBody, 0x80) // rbsp_trailing_bits
	mixedSEI := rbsp.Insert(append(nalHeader(hevcstream.NALTypeSEIPrefix), rbspBody...))

	nals := append(parameterSets(), mixedSEI, firstSliceNAL())
	stream := buildStream(nals...)
	records := recordsWithIDs(1000)

	var out bytes.Buffer
	err = Inject(bytes.NewReader(stream), bytes.NewReader(stream), &out, records, Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}

	outStripped := rbsp.Strip(out.Bytes())
	if !bytes.Contains(outStripped, other1) {
		t.Error("output dropped the preceding unrelated SEI message")
	}
	if !bytes.Contains(outStripped, other2) {
		t.Error("output dropped the following unrelated SEI message")
	}
	if bytes.Contains(outStripped, oldPayload) {
		t.Error("output still contains the replaced ST-2094-40 payload bytes")
	}

	got := extractedAverageRGBs(t, out.Bytes())
	want := []uint32{1000}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("AverageMaxRgb values = %v; want %v", got, want)
	}
}
