package bitio

import "testing"

func TestReaderBits(t *testing.T) {
	// 1000 1111, 1110 0011
	r := NewReader([]byte{0x8f, 0xe3})

	got, err := r.Bits(4)
	if err != nil || got != 0x8 {
		t.Fatalf("Bits(4) = %#x, %v; want 0x8, nil", got, err)
	}
	got, err = r.Bits(2)
	if err != nil || got != 0x3 {
		t.Fatalf("Bits(2) = %#x, %v; want 0x3, nil", got, err)
	}
	got, err = r.Bits(4)
	if err != nil || got != 0xf {
		t.Fatalf("Bits(4) = %#x, %v; want 0xf, nil", got, err)
	}
	got, err = r.Bits(6)
	if err != nil || got != 0x23 {
		t.Fatalf("Bits(6) = %#x, %v; want 0x23, nil", got, err)
	}
	if !r.ByteAligned() {
		t.Fatal("expected reader to be byte aligned after consuming all bits")
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{0xff})
	if _, err := r.Bits(9); err != ErrShortBuffer {
		t.Fatalf("Bits(9) err = %v; want ErrShortBuffer", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutBits(0x8, 4)
	w.PutBits(0x3, 2)
	w.PutBits(0xf, 4)
	w.PutBits(0x23, 6)
	got := w.Finish()
	want := []byte{0x8f, 0xe3}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Finish() = %#v; want %#v", got, want)
	}
}

func TestWriterPadsTrailingByte(t *testing.T) {
	w := NewWriter()
	w.PutBits(0x1, 3)
	got := w.Finish()
	want := byte(0x1 << 5)
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Finish() = %#v; want [%#x]", got, want)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutBool(true)
	w.PutBool(false)
	w.PutBool(true)
	buf := w.Finish()

	r := NewReader(buf)
	for _, want := range []bool{true, false, true} {
		got, err := r.Bool()
		if err != nil {
			t.Fatalf("Bool() error: %v", err)
		}
		if got != want {
			t.Fatalf("Bool() = %v; want %v", got, want)
		}
	}
}
