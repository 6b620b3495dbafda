// Package client implements the Fenris connection manager: the thin
// client-side counterpart to fenris.Server's per-session loop, covering
// exactly the protocol surface client programs need (§4.9's note that
// the client side is in scope only insofar as the wire protocol
// requires it).
//
// Generalized from mars9-ramfs's cmd/racon, which dialed a 9P
// connection, attached a filesystem and dispatched a flat command
// table (ping/create/read/write/...) against it; Client plays the same
// role for Fenris's own request/response pairs instead of 9P Tmessages.
package client

import (
	"net"
	"time"

	"github.com/fenrisfs/fenris"
)

// Client holds one handshaked connection to a Fenris server.
type Client struct {
	conn    net.Conn
	channel *fenris.SecureChannel
}

// Dial connects to addr, completes the client side of the handshake
// (§4.3) and returns a ready Client.
func Dial(addr string, maxFrame uint32, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}

	key, err := fenris.ClientHandshake(conn, maxFrame)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Client{
		conn:    conn,
		channel: fenris.NewSecureChannel(conn, key, maxFrame),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Call sends req and returns the decoded response, the single
// round-trip primitive every command below is built from.
func (c *Client) Call(req fenris.Request) (fenris.Response, error) {
	plain, err := fenris.EncodeRequest(req)
	if err != nil {
		return fenris.Response{}, err
	}
	if err := c.channel.SendMessage(plain); err != nil {
		return fenris.Response{}, err
	}

	reply, err := c.channel.ReceiveMessage()
	if err != nil {
		return fenris.Response{}, err
	}
	return fenris.DecodeResponse(reply)
}

// Ping sends a PING carrying payload and returns the echoed payload.
func (c *Client) Ping(payload []byte) ([]byte, error) {
	resp, err := c.Call(fenris.Request{Command: fenris.CmdPing, Data: payload})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Terminate sends TERMINATE and closes the local connection; the
// server closes its side once it observes the command.
func (c *Client) Terminate() error {
	_, err := c.Call(fenris.Request{Command: fenris.CmdTerminate})
	if err != nil {
		return err
	}
	return c.Close()
}

// CreateFile issues CREATE_FILE for name.
func (c *Client) CreateFile(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdCreateFile, Filename: name})
}

// ReadFile issues READ_FILE for name.
func (c *Client) ReadFile(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdReadFile, Filename: name})
}

// WriteFile issues WRITE_FILE for name with data.
func (c *Client) WriteFile(name string, data []byte) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdWriteFile, Filename: name, Data: data})
}

// AppendFile issues APPEND_FILE for name with data.
func (c *Client) AppendFile(name string, data []byte) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdAppendFile, Filename: name, Data: data})
}

// DeleteFile issues DELETE_FILE for name.
func (c *Client) DeleteFile(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdDeleteFile, Filename: name})
}

// InfoFile issues INFO_FILE for name.
func (c *Client) InfoFile(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdInfoFile, Filename: name})
}

// CreateDir issues CREATE_DIR for name.
func (c *Client) CreateDir(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdCreateDir, Filename: name})
}

// ListDir issues LIST_DIR for name.
func (c *Client) ListDir(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdListDir, Filename: name})
}

// ChangeDir issues CHANGE_DIR for name.
func (c *Client) ChangeDir(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdChangeDir, Filename: name})
}

// DeleteDir issues DELETE_DIR for name.
func (c *Client) DeleteDir(name string) (fenris.Response, error) {
	return c.Call(fenris.Request{Command: fenris.CmdDeleteDir, Filename: name})
}
