/*
DESCRIPTION
  bytescanner.go buffers an io.Reader for byte-at-a-time consumption, the
  primitive internal/hevcstream.Scan builds its chunked Annex-B NAL
  splitting on top of instead of re-reading the source one syscall per
  byte.

AUTHORS
  Dan Kortschak <dan@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package codecutil provides low-level stream reading primitives shared by
// this module's HEVC Annex-B scanner.
package codecutil

import "io"

// ByteScanner buffers reads from an underlying io.Reader so a caller can
// pull one byte at a time without a syscall per byte, reloading the
// buffer from r as it's exhausted.
type ByteScanner struct {
	buf []byte
	off int

	// r is the source of data for the scanner.
	r io.Reader
}

// NewByteScanner returns a scanner initialised with an io.Reader and a read buffer.
func NewByteScanner(r io.Reader, buf []byte) *ByteScanner {
	return &ByteScanner{r: r, buf: buf[:0]}
}

// ReadByte returns the next byte from the underlying reader, reloading
// the buffer as needed. It is the only primitive internal/hevcstream.Scan
// needs: the Annex-B start-code search and NAL splitting happen over the
// chunk buffer Scan assembles from repeated ReadByte calls, not here.
func (c *ByteScanner) ReadByte() (byte, error) {
	if c.off >= len(c.buf) {
		err := c.reload()
		if err != nil {
			return 0, err
		}
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// reload re-fills the scanner's buffer.
func (c *ByteScanner) reload() error {
	n, err := c.r.Read(c.buf[:cap(c.buf)])
	c.buf = c.buf[:n]
	if err != nil {
		if err != io.EOF {
			return err
		}
		if n == 0 {
			return io.EOF
		}
	}
	c.off = 0
	return nil
}
