package fenris

import (
	"bytes"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

// Command identifies the request kind, per §6's abstract message
// schema.
type Command string

const (
	CmdPing       Command = "PING"
	CmdCreateFile Command = "CREATE_FILE"
	CmdReadFile   Command = "READ_FILE"
	CmdWriteFile  Command = "WRITE_FILE"
	CmdAppendFile Command = "APPEND_FILE"
	CmdDeleteFile Command = "DELETE_FILE"
	CmdInfoFile   Command = "INFO_FILE"
	CmdCreateDir  Command = "CREATE_DIR"
	CmdListDir    Command = "LIST_DIR"
	CmdChangeDir  Command = "CHANGE_DIR"
	CmdDeleteDir  Command = "DELETE_DIR"
	CmdTerminate  Command = "TERMINATE"
)

// ResponseKind identifies the response kind.
type ResponseKind string

const (
	RespPong        ResponseKind = "PONG"
	RespFileInfo    ResponseKind = "FILE_INFO"
	RespFileContent ResponseKind = "FILE_CONTENT"
	RespDirListing  ResponseKind = "DIR_LISTING"
	RespSuccess     ResponseKind = "SUCCESS"
	RespError       ResponseKind = "ERROR"
	RespTerminated  ResponseKind = "TERMINATED"
)

// Request is the client->server message, per §3/§6. Filename and Data
// are optional depending on Command.
type Request struct {
	Command  Command `codec:"cmd"`
	Filename string  `codec:"filename,omitempty"`
	Data     []byte  `codec:"data,omitempty"`
}

// WireFileInfo is FileInfo's wire-stable projection (§6's
// FileInfo := {name, size, is_directory, modified_time, permissions}).
type WireFileInfo struct {
	Name       string `codec:"name"`
	Size       int64  `codec:"size"`
	IsDir      bool   `codec:"is_directory"`
	ModTimeUTC int64  `codec:"modified_time"`
	Perm       uint32 `codec:"permissions"`
}

func toWireFileInfo(fi FileInfo) WireFileInfo {
	return WireFileInfo{
		Name:       fi.Name,
		Size:       fi.Size,
		IsDir:      fi.IsDir,
		ModTimeUTC: fi.ModTime.Unix(),
		Perm:       uint32(fi.Perm),
	}
}

// Response is the server->client message, per §3/§6.
type Response struct {
	Type         ResponseKind   `codec:"type"`
	Success      bool           `codec:"success"`
	ErrorMessage string         `codec:"error_message,omitempty"`
	Data         []byte         `codec:"data,omitempty"`
	Info         *WireFileInfo  `codec:"file_info,omitempty"`
	Listing      []WireFileInfo `codec:"dir_listing,omitempty"`
}

// newMsgpackHandle returns a codec.Handle configured for Fenris's wire
// format: a compact binary encoding chosen from the pack's own
// ecosystem (hashicorp/go-msgpack, the same msgpack fork moby-moby's
// dependency graph carries), satisfying §6's "any binary encoding that
// round-trips is acceptable, provided both endpoints agree."
func newMsgpackHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.RawToString = true
	return h
}

// EncodeRequest serializes req to Fenris's wire schema.
func EncodeRequest(req Request) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, newMsgpackHandle())
	if err := enc.Encode(req); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRequest parses a wire-format request.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	dec := codec.NewDecoderBytes(data, newMsgpackHandle())
	if err := dec.Decode(&req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// EncodeResponse serializes resp to Fenris's wire schema.
func EncodeResponse(resp Response) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, newMsgpackHandle())
	if err := enc.Encode(resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeResponse parses a wire-format response.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	dec := codec.NewDecoderBytes(data, newMsgpackHandle())
	if err := dec.Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
