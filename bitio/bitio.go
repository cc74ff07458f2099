/*
DESCRIPTION
  bitio.go provides a bit-level reader and writer over an in-memory byte
  buffer, used to parse and construct ST-2094-40 metadata records and the
  SEI messages that carry them.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitio provides MSB-first bit reading and writing over a
// fully-buffered []byte, as opposed to the io.Reader-backed readers used
// elsewhere in this module's teacher lineage. ST-2094-40 records and SEI
// payloads are small and are always fully resident in memory by the time
// they are parsed or built, so there is no benefit to streaming here.
package bitio

import "github.com/pkg/errors"

// ErrShortBuffer is returned when a read runs past the end of the buffer.
var ErrShortBuffer = errors.New("bitio: buffer too short")

// Reader reads bits, most-significant-bit first, from a byte buffer.
type Reader struct {
	buf  []byte
	pos  int // bit position from the start of buf
	nbit int // total bits available
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf, nbit: len(buf) * 8}
}

// Bit reads a single bit.
func (r *Reader) Bit() (uint8, error) {
	if r.pos >= r.nbit {
		return 0, ErrShortBuffer
	}
	b := r.buf[r.pos/8]
	shift := uint(7 - r.pos%8)
	r.pos++
	return (b >> shift) & 1, nil
}

// Bits reads n bits (0 <= n <= 64) and returns them right-justified in a
// uint64.
func (r *Reader) Bits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if r.pos+n > r.nbit {
		return 0, ErrShortBuffer
	}
	var v uint64
	for i := 0; i < n; i++ {
		bit, err := r.Bit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | uint64(bit)
	}
	return v, nil
}

// Uint8 reads n bits (0 <= n <= 8) as a uint8.
func (r *Reader) Uint8(n int) (uint8, error) {
	v, err := r.Bits(n)
	return uint8(v), err
}

// Uint16 reads n bits (0 <= n <= 16) as a uint16.
func (r *Reader) Uint16(n int) (uint16, error) {
	v, err := r.Bits(n)
	return uint16(v), err
}

// Uint32 reads n bits (0 <= n <= 32) as a uint32.
func (r *Reader) Uint32(n int) (uint32, error) {
	v, err := r.Bits(n)
	return uint32(v), err
}

// Bool reads a single bit as a boolean.
func (r *Reader) Bool() (bool, error) {
	b, err := r.Bit()
	return b == 1, err
}

// ByteAligned reports whether the reader sits on a byte boundary.
func (r *Reader) ByteAligned() bool { return r.pos%8 == 0 }

// BitsRead returns the number of bits consumed so far.
func (r *Reader) BitsRead() int { return r.pos }

// Remaining returns the number of unread bits left in the buffer.
func (r *Reader) Remaining() int { return r.nbit - r.pos }

// Writer builds a byte buffer one or more bits at a time, most-significant
// bit first, padding the final byte with zero bits on Finish.
type Writer struct {
	buf  []byte
	cur  byte
	nbit int // bits written into cur
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// PutBit writes a single bit.
func (w *Writer) PutBit(b uint8) {
	w.cur = w.cur<<1 | (b & 1)
	w.nbit++
	if w.nbit == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.nbit = 0
	}
}

// PutBits writes the low n bits of v, most-significant first.
func (w *Writer) PutBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.PutBit(uint8(v >> uint(i)))
	}
}

// PutBool writes a single bit for a boolean value.
func (w *Writer) PutBool(b bool) {
	if b {
		w.PutBit(1)
		return
	}
	w.PutBit(0)
}

// Finish pads any partial trailing byte with zero bits and returns the
// accumulated buffer. The Writer may continue to be used after Finish; the
// padding bits are not retained.
func (w *Writer) Finish() []byte {
	if w.nbit == 0 {
		return w.buf
	}
	padded := w.cur << uint(8-w.nbit)
	return append(w.buf, padded)
}

// Len returns the number of whole bytes written so far, not counting a
// partially-filled trailing byte.
func (w *Writer) Len() int { return len(w.buf) }
