package fenris

import (
	"io"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSessionHandshakeAndRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	tree := NewTree()
	sess := newSession(1, serverConn, tree, log.WithField("t", true))

	errCh := make(chan error, 1)
	go func() {
		errCh <- sess.beginHandshake(0)
	}()

	key, err := ClientHandshake(clientConn, 0)
	if err != nil {
		t.Fatalf("client handshake: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server handshake: %v", err)
	}
	if sess.state != StateReady {
		t.Fatalf("expected Ready, got %s", sess.state)
	}

	clientChannel := NewSecureChannel(clientConn, key, 0)

	reqBytes, _ := EncodeRequest(Request{Command: CmdPing, Data: []byte("x")})
	go clientChannel.SendMessage(reqBytes)

	req, err := sess.receiveRequest()
	if err != nil {
		t.Fatalf("receive request: %v", err)
	}
	if req.Command != CmdPing {
		t.Fatalf("expected PING, got %s", req.Command)
	}
	if sess.state != StateProcessing {
		t.Fatalf("expected Processing, got %s", sess.state)
	}

	respDone := make(chan error, 1)
	go func() {
		respDone <- sess.sendResponse(Response{Type: RespPong, Success: true})
	}()

	reply, err := clientChannel.ReceiveMessage()
	if err != nil {
		t.Fatalf("client receive: %v", err)
	}
	if err := <-respDone; err != nil {
		t.Fatalf("send response: %v", err)
	}

	resp, err := DecodeResponse(reply)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Type != RespPong {
		t.Fatalf("expected PONG, got %s", resp.Type)
	}
	if sess.state != StateReady {
		t.Fatalf("expected Ready after response, got %s", sess.state)
	}
}

func TestSessionTerminateIsIdempotent(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	tree := NewTree()
	sess := newSession(1, serverConn, tree, log.WithField("t", true))

	sess.terminate()
	sess.terminate()
	if sess.state != StateTerminated {
		t.Fatalf("expected Terminated")
	}
	if sess.curNode != nil {
		t.Fatalf("expected curNode cleared")
	}
}
