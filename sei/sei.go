/*
DESCRIPTION
  sei.go frames ST-2094-40 metadata as an HEVC prefix SEI NAL unit, detects
  it inside an arbitrary SEI NAL payload, and removes a single ST-2094-40
  message from a SEI NAL that may carry more than one message.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sei implements the HEVC prefix SEI NAL framing of ST-2094-40
// Application 4 dynamic metadata: user_data_registered_itu_t_t35 payloads
// identified by the 0xB5/0x003C/0x0001 ITU-T T.35 codes and
// application_identifier 4.
package sei

import (
	"github.com/ausocean/hdr10plus/rbsp"
	"github.com/pkg/errors"
)

const (
	// NALTypePrefixSEI is the HEVC nal_unit_type for a prefix SEI message.
	NALTypePrefixSEI = 39

	payloadTypeUserDataRegisteredItuTT35 = 4

	ituTT35CountryCode                  = 0xB5
	ituTT35TerminalProviderCode         = 0x003C
	ituTT35TerminalProviderOrientedCode = 0x0001
	applicationIdentifier               = 4

	maxPayloadSize = 255
)

// ErrPayloadTooLarge is returned by Frame when the ST-2094-40 payload would
// not fit in a single SEI message (payload_size is a single byte).
var ErrPayloadTooLarge = errors.New("sei: payload exceeds 255 bytes, cannot fit in one SEI message")

// Frame wraps an ST-2094-40 RBSP payload (the output of
// metadata.Record.Encode) as a complete HEVC prefix SEI NAL unit: the
// 2-byte NAL header, the SEI message header, the payload, and RBSP
// trailing bits. Emulation prevention is applied to the entire NAL,
// including the header, before the caller prefixes a start code.
func Frame(payload []byte, temporalID uint8) ([]byte, error) {
	if len(payload) > maxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, 0, 6+len(payload))

	// NAL unit header: forbidden_zero_bit(1)=0, nal_unit_type(6), nuh_layer_id(6)=0,
	// nuh_temporal_id_plus1(3)=temporalID+1.
	buf = append(buf, byte(NALTypePrefixSEI<<1))
	buf = append(buf, byte((temporalID+1)&0x7))

	// SEI message header: last_payload_type_byte, last_payload_size_byte.
	buf = append(buf, payloadTypeUserDataRegisteredItuTT35)
	buf = append(buf, byte(len(payload)))
	buf = append(buf, payload...)

	// rbsp_trailing_bits: stop bit followed by zero padding to a byte.
	buf = append(buf, 0x80)

	return rbsp.Insert(buf), nil
}
