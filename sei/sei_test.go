package sei

import (
	"bytes"
	"testing"

	"github.com/ausocean/hdr10plus/rbsp"
)

func st2094Payload() []byte {
	// itu_t_t35_country_code, provider code, oriented code, application_id,
	// application_version, plus a few filler bytes to exceed the 7-byte
	// minimum payload_size the detector requires.
	return []byte{
		ituTT35CountryCode,
		0x00, 0x3C,
		0x00, 0x01,
		applicationIdentifier,
		0x01,
		0x00, 0x00,
	}
}

func TestFrameProducesDetectableNAL(t *testing.T) {
	payload := st2094Payload()
	nal, err := Frame(payload, 1)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	// Strip the NAL header (2 bytes) to get the SEI RBSP, then undo
	// emulation prevention, matching how a real extractor would hand this
	// package its input.
	stripped := rbsp.Strip(nal[2:])
	// The rbsp_trailing_bits stop byte that Frame appended stays in place;
	// ParseMessages stops at it since no payload_size byte follows it.
	msg, ok := Detect(stripped, true)
	if !ok {
		t.Fatal("Detect() = false; want true for a just-framed message")
	}
	if msg.PayloadSize != len(payload) {
		t.Fatalf("PayloadSize = %d; want %d", msg.PayloadSize, len(payload))
	}
}

func TestFrameRejectsOversizedPayload(t *testing.T) {
	big := make([]byte, maxPayloadSize+1)
	if _, err := Frame(big, 1); err != ErrPayloadTooLarge {
		t.Fatalf("Frame() err = %v; want ErrPayloadTooLarge", err)
	}
}

func TestDetectStrictVersusLenient(t *testing.T) {
	payload := st2094Payload()
	payload[6] = 2 // application_version = 2, invalid for v1 streams
	// Detect takes an SEI RBSP, so wrap the payload in its message header.
	msg := append([]byte{payloadTypeUserDataRegisteredItuTT35, byte(len(payload))}, payload...)

	if _, ok := Detect(msg, true); ok {
		t.Fatal("Detect(strict=true) = true; want false for application_version 2")
	}
	if _, ok := Detect(msg, false); ok {
		t.Fatal("Detect(strict=false) = true; want false, version 2 is still > 1")
	}

	msg[2+6] = 1
	if _, ok := Detect(msg, false); !ok {
		t.Fatal("Detect(strict=false) = false; want true for application_version 1")
	}
}

func TestStripMessageDropsSoleMessage(t *testing.T) {
	payload := st2094Payload()
	nal, err := Frame(payload, 1)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	stripped := rbsp.Strip(nal[2:])

	found, newPayload := StripMessage(stripped)
	if !found {
		t.Fatal("StripMessage() found = false; want true")
	}
	if newPayload != nil {
		t.Fatalf("StripMessage() newPayload = %#v; want nil (sole message dropped)", newPayload)
	}
}

func TestStripMessageExcisesAmongOthers(t *testing.T) {
	other := []byte{0x05, 0x02, 0xAA, 0xBB} // an unrelated SEI message (payload_type=5)
	st := append([]byte{payloadTypeUserDataRegisteredItuTT35, byte(len(st2094Payload()))}, st2094Payload()...)
	combined := append(append([]byte{}, other...), st...)

	found, newPayload := StripMessage(combined)
	if !found {
		t.Fatal("StripMessage() found = false; want true")
	}
	if newPayload == nil {
		t.Fatal("StripMessage() newPayload = nil; want the remaining message preserved")
	}
	got := rbsp.Strip(newPayload)
	if !bytes.Equal(got, other) {
		t.Fatalf("remaining payload = %#v; want %#v", got, other)
	}
}
