package fenris

import (
	"encoding/binary"
	"io"
)

// Framer sends and receives length-prefixed, opaque byte frames over an
// io.ReadWriter, per §4.1. It is oblivious to frame contents: the same
// Framer carries both raw handshake public keys and encrypted payloads.
//
// Generalized from the teacher's conn.recv/conn.send goroutine pair
// (mars9-ramfs/conn.go), which looped plan9.ReadFcall/WriteFcall over a
// raw io.ReadWriteCloser; here the length-prefix loop itself is lifted
// out of the 9P-specific marshaler into its own reusable layer, and the
// partial I/O retry loop is grounded on the original C++
// send_data/receive_data (common/network_utils.cpp).
type Framer struct {
	rw      io.ReadWriter
	maxSize uint32
}

// NewFramer wraps rw with a frame size ceiling. A maxSize of 0 selects
// DefaultMaxFrameSize.
func NewFramer(rw io.ReadWriter, maxSize uint32) *Framer {
	if maxSize == 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &Framer{rw: rw, maxSize: maxSize}
}

// Send writes one frame: a 4-byte big-endian length prefix followed by
// payload. A zero-length payload is a protocol error, not silently
// accepted, so that Send/Receive stay symmetric with the spec's framing
// law.
func (f *Framer) Send(payload []byte) error {
	if len(payload) == 0 {
		return ErrZeroFrame
	}
	if uint32(len(payload)) > f.maxSize {
		return ErrFrameTooLarge
	}

	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if err := writeFull(f.rw, hdr[:]); err != nil {
		return err
	}
	return writeFull(f.rw, payload)
}

// Receive reads one frame and returns its payload. The size prefix is
// validated against maxSize before any payload buffer is allocated, so
// a pathological length cannot force an allocation.
func (f *Framer) Receive() ([]byte, error) {
	var hdr [4]byte
	if err := readFull(f.rw, hdr[:]); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 {
		return nil, ErrZeroFrame
	}
	if n > f.maxSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, n)
	if err := readFull(f.rw, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// readFull loops until exactly len(buf) bytes have been read, mapping a
// zero-byte read before completion to ErrPeerClosed rather than a raw
// io.EOF, per §4.1.
func readFull(r io.Reader, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		if n > 0 {
			read += n
			continue
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrPeerClosed
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPeerClosed
		}
	}
	return nil
}

// writeFull loops until exactly len(buf) bytes have been written.
func writeFull(w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		if n > 0 {
			written += n
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPeerClosed
		}
	}
	return nil
}
