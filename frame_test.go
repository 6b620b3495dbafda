package fenris

import (
	"bytes"
	"io"
	"testing"
)

type flakyReader struct {
	chunks [][]byte
}

func (f *flakyReader) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[0])
	f.chunks[0] = f.chunks[0][n:]
	if len(f.chunks[0]) == 0 {
		f.chunks = f.chunks[1:]
	}
	return n, nil
}

func (f *flakyReader) Write(p []byte) (int, error) { return len(p), nil }

func TestFramerSendReceive(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewFramer(buf, 0)

	payload := []byte("hello fenris")
	if err := f.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	got, err := f.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}
}

func TestFramerRejectsZeroLength(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewFramer(buf, 0)
	if err := f.Send(nil); err != ErrZeroFrame {
		t.Fatalf("expected ErrZeroFrame, got %v", err)
	}
}

func TestFramerRejectsOversize(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewFramer(buf, 4)
	if err := f.Send([]byte("hello")); err != ErrFrameTooLarge {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestFramerReadFullAcrossShortReads(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewFramer(buf, 0)
	payload := []byte("partial io exercise")
	if err := f.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	raw := buf.Bytes()
	chunks := make([][]byte, 0)
	for i := 0; i < len(raw); i += 3 {
		end := i + 3
		if end > len(raw) {
			end = len(raw)
		}
		chunks = append(chunks, raw[i:end])
	}

	fr := NewFramer(&flakyReader{chunks: chunks}, 0)
	got, err := fr.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}
}

func TestFramerPeerClosedMidFrame(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewFramer(buf, 0)
	if err := f.Send([]byte("xx")); err != nil {
		t.Fatalf("send: %v", err)
	}

	truncated := bytes.NewReader(buf.Bytes()[:3])
	fr := NewFramer(struct {
		io.Reader
		io.Writer
	}{truncated, io.Discard}, 0)
	if _, err := fr.Receive(); err != ErrPeerClosed {
		t.Fatalf("expected ErrPeerClosed, got %v", err)
	}
}
