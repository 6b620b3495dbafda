package fenris

import (
	"net"

	"github.com/sirupsen/logrus"
)

// SessionState enumerates §4.7's state machine.
type SessionState int

const (
	StateNew SessionState = iota
	StateHandshaking
	StateReady
	StateProcessing
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateHandshaking:
		return "Handshaking"
	case StateReady:
		return "Ready"
	case StateProcessing:
		return "Processing"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Session is per-connection server-side state (§3). It is owned
// exclusively by its worker goroutine and never shared, per §5's
// "Session state: owned exclusively by its worker; never shared."
//
// Generalized from mars9-ramfs's *Fid (current node + uid) and *conn
// (socket + per-connection bookkeeping) merged into one type, because
// Fenris has no separate fid-per-open-file concept: one session has
// exactly one current directory/node, matching §3's data model
// directly rather than 9P's per-fid indirection.
type Session struct {
	ID      uint64
	Conn    net.Conn
	Peer    string
	channel *SecureChannel

	tree    *Tree
	curDir  string
	curNode *node
	depth   int

	state SessionState
	keep  bool

	log *logrus.Entry
}

// newSession constructs a session rooted at tree's root, in StateNew.
func newSession(id uint64, conn net.Conn, tree *Tree, log *logrus.Entry) *Session {
	root := tree.Root()
	root.acquire()
	return &Session{
		ID:      id,
		Conn:    conn,
		Peer:    conn.RemoteAddr().String(),
		tree:    tree,
		curDir:  "/",
		curNode: root,
		depth:   0,
		state:   StateNew,
		keep:    true,
		log:     log,
	}
}

// beginHandshake transitions New -> Handshaking and performs §4.3 over
// the raw connection, storing the derived SecureChannel.
func (s *Session) beginHandshake(maxFrame uint32) error {
	s.state = StateHandshaking
	key, err := ServerHandshake(s.Conn, maxFrame)
	if err != nil {
		return err
	}
	s.channel = NewSecureChannel(s.Conn, key, maxFrame)
	s.state = StateReady
	return nil
}

// receiveRequest reads and decrypts the next frame, transitioning
// Ready -> Processing on success.
func (s *Session) receiveRequest() (Request, error) {
	plain, err := s.channel.ReceiveMessage()
	if err != nil {
		return Request{}, err
	}
	s.state = StateProcessing
	req, err := DecodeRequest(plain)
	if err != nil {
		return Request{}, perror("malformed request")
	}
	return req, nil
}

// sendResponse encrypts and writes resp, transitioning Processing ->
// Ready.
func (s *Session) sendResponse(resp Response) error {
	plain, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	if err := s.channel.SendMessage(plain); err != nil {
		return err
	}
	s.state = StateReady
	return nil
}

// changeCursor atomically swaps the session's (current_directory,
// current_node, depth) with a cursor that has already completed a
// successful walk (§4.8's CHANGE_DIR commit semantics), releasing the
// session's hold on the old node and adopting the cursor's
// acquisitions as the new hold.
func (s *Session) changeCursor(c *Cursor) {
	old := s.curNode
	s.curNode = c.Node()
	s.curDir = c.Path()
	s.depth = c.Depth()
	c.Commit()
	old.release()
}

// terminate drops the session's hold on its current node all the way
// back to the root is unnecessary -- only the current node itself was
// ever acquired, per §3's access-count invariant -- and transitions to
// Terminated. It is idempotent.
func (s *Session) terminate() {
	if s.state == StateTerminated {
		return
	}
	if s.curNode != nil {
		s.curNode.release()
		s.curNode = nil
	}
	s.state = StateTerminated
	s.keep = false
}
