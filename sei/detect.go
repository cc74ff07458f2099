/*
DESCRIPTION
  detect.go recognizes an ST-2094-40 message inside a SEI NAL payload and
  excises exactly one such message from a NAL that carries several.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sei

import "github.com/ausocean/hdr10plus/rbsp"

// Message describes one SEI message found inside a SEI NAL's RBSP payload.
type Message struct {
	PayloadType   int
	PayloadSize   int
	MsgOffset     int // offset of this message's payload_type byte run
	PayloadOffset int // offset of the first payload byte
}

// ParseMessages walks the SEI messages in rbsp (emulation prevention
// already stripped), per the last_payload_type_byte/last_payload_size_byte
// chained-byte-run encoding of Rec. ITU-T H.265 Annex D.
func ParseMessages(rbspPayload []byte) []Message {
	var msgs []Message
	i := 0
	for i < len(rbspPayload) {
		msgOffset := i
		payloadType := 0
		for i < len(rbspPayload) && rbspPayload[i] == 0xFF {
			payloadType += 255
			i++
		}
		if i >= len(rbspPayload) {
			break
		}
		payloadType += int(rbspPayload[i])
		i++

		payloadSize := 0
		for i < len(rbspPayload) && rbspPayload[i] == 0xFF {
			payloadSize += 255
			i++
		}
		if i >= len(rbspPayload) {
			break
		}
		payloadSize += int(rbspPayload[i])
		i++

		payloadOffset := i
		if payloadOffset+payloadSize > len(rbspPayload) {
			break
		}
		msgs = append(msgs, Message{
			PayloadType:   payloadType,
			PayloadSize:   payloadSize,
			MsgOffset:     msgOffset,
			PayloadOffset: payloadOffset,
		})
		i = payloadOffset + payloadSize
	}
	return msgs
}

// Detect reports whether rbspPayload (a SEI NAL's stripped RBSP) contains
// an ST-2094-40 Application 4 message, and if so returns it. When strict is
// true, application_version must equal exactly 1; otherwise versions of 1
// or less are accepted, matching the reference decoder's lenient
// (non-validating) scan used while searching for metadata to remove.
func Detect(rbspPayload []byte, strict bool) (Message, bool) {
	for _, msg := range ParseMessages(rbspPayload) {
		if msg.PayloadType != payloadTypeUserDataRegisteredItuTT35 || msg.PayloadSize < 7 {
			continue
		}
		body := rbspPayload[msg.PayloadOffset : msg.PayloadOffset+msg.PayloadSize]
		r := &byteReader{buf: body}
		if r.u8() != ituTT35CountryCode {
			continue
		}
		if r.u16() != ituTT35TerminalProviderCode {
			continue
		}
		if r.u16() != ituTT35TerminalProviderOrientedCode {
			continue
		}
		appID := r.u8()
		appVersion := r.u8()
		validVersion := appVersion == 1
		if !strict {
			validVersion = appVersion <= 1
		}
		if appID == applicationIdentifier && validVersion {
			return msg, true
		}
	}
	return Message{}, false
}

type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) u8() uint8 {
	if r.off >= len(r.buf) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *byteReader) u16() uint16 {
	hi := r.u8()
	lo := r.u8()
	return uint16(hi)<<8 | uint16(lo)
}

// StripMessage implements the NAL-level removal policy: given a prefix SEI
// NAL's RBSP payload (emulation prevention stripped), it reports whether an
// ST-2094-40 message was found and, if the NAL carries other SEI messages
// besides it, the RBSP payload with only that message excised and emulation
// prevention re-applied. If the ST-2094-40 message is the NAL's only
// content, the caller should drop the whole NAL (found=true, newPayload=nil).
func StripMessage(rbspPayload []byte) (found bool, newPayload []byte) {
	msg, ok := Detect(rbspPayload, false)
	if !ok {
		return false, nil
	}

	all := ParseMessages(rbspPayload)
	if len(all) <= 1 {
		return true, nil
	}

	end := msg.PayloadOffset + msg.PayloadSize
	out := make([]byte, 0, len(rbspPayload)-(end-msg.MsgOffset))
	out = append(out, rbspPayload[:msg.MsgOffset]...)
	out = append(out, rbspPayload[end:]...)
	return true, rbsp.Insert(out)
}
