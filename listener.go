package fenris

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Server accepts connections, runs the per-session handshake and
// request/response loop, and shuts down cooperatively. Generalized
// from mars9-ramfs's server+FS pairing (server.go/fs.go): the teacher's
// server held a connmap of reusable 9P connection slots guarded by a
// mutex; Fenris has no connection-slot reuse requirement (§4.9 assigns
// a monotonically increasing client id and never recycles one), so the
// map collapses to a plain counter, but the "mutex-guarded registry +
// graceful listener close" shape is kept.
type Server struct {
	Config   Config
	Tree     *Tree
	Files    *FileOps
	Cache    *Cache
	Dispatch HandlerFunc
	Log      *logrus.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	nextID   uint64
	sessions map[uint64]*Session
	listener net.Listener
	running  int32
}

// NewServer wires a Tree, FileOps, Cache and Dispatcher together behind
// a Config, ready to Serve. It is the composition root §4.9 describes:
// one tree, one cache, one dispatcher, shared by every accepted
// session.
func NewServer(cfg Config, log *logrus.Logger) (*Server, error) {
	files, err := NewFileOps(cfg.RootDir)
	if err != nil {
		return nil, err
	}
	cache, err := NewCache(cfg.CacheEntries)
	if err != nil {
		return nil, err
	}
	tree := NewTree()

	d := NewDispatcher(tree, files, cache, log)
	return &Server{
		Config:   cfg,
		Tree:     tree,
		Files:    files,
		Cache:    cache,
		Dispatch: d.Handle,
		Log:      log,
		sessions: make(map[uint64]*Session),
	}, nil
}

// Serve listens on cfg.ListenAddr and runs the accept loop until Close
// is called. It blocks until the listener is closed.
func (srv *Server) Serve() error {
	ln, err := net.Listen("tcp", srv.Config.ListenAddr)
	if err != nil {
		return err
	}

	srv.mu.Lock()
	srv.listener = ln
	srv.mu.Unlock()
	atomic.StoreInt32(&srv.running, 1)

	srv.Log.WithField("addr", srv.Config.ListenAddr).Info("fenris server listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if atomic.LoadInt32(&srv.running) == 0 {
				return nil
			}
			srv.Log.WithError(fmtErr("accept connection", err)).Warn("accept failed, retrying")
			continue
		}
		id := srv.allocID()
		srv.wg.Add(1)
		go srv.handleConn(id, conn)
	}
}

// Close stops accepting new connections, then closes every registered
// session's socket to unblock its worker out of a blocking read, and
// joins all workers before returning. This is §4.9's full graceful
// shutdown: "join all session workers" and "close any leftover client
// sockets", not just the listener itself.
func (srv *Server) Close() error {
	atomic.StoreInt32(&srv.running, 0)
	srv.mu.Lock()
	ln := srv.listener
	srv.mu.Unlock()
	if ln != nil {
		ln.Close()
	}

	srv.mu.Lock()
	conns := make([]net.Conn, 0, len(srv.sessions))
	for _, s := range srv.sessions {
		conns = append(conns, s.Conn)
	}
	srv.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}

	srv.wg.Wait()
	return nil
}

func (srv *Server) allocID() uint64 {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.nextID++
	return srv.nextID
}

func (srv *Server) register(s *Session) {
	srv.mu.Lock()
	srv.sessions[s.ID] = s
	srv.mu.Unlock()
}

func (srv *Server) unregister(id uint64) {
	srv.mu.Lock()
	delete(srv.sessions, id)
	srv.mu.Unlock()
}

// handleConn drives one session's full lifecycle: handshake, then
// request/response loop until TERMINATE, a protocol error, or the peer
// closing the socket (§4.7, §4.9).
func (srv *Server) handleConn(id uint64, conn net.Conn) {
	defer srv.wg.Done()
	defer conn.Close()

	// trace correlates every log line for one connection across the
	// handshake and every request it issues, independent of the
	// session id (which is protocol-visible nowhere -- it is purely a
	// local bookkeeping key).
	trace := uuid.New().String()
	log := srv.Log.WithFields(logrus.Fields{"session": id, "trace": trace, "peer": conn.RemoteAddr().String()})

	sess := newSession(id, conn, srv.Tree, log)
	srv.register(sess)
	defer srv.unregister(id)

	if err := sess.beginHandshake(uint32(srv.Config.MaxFrameSize)); err != nil {
		log.WithError(err).Warn("handshake failed")
		return
	}
	log.Debug("handshake complete")

	for sess.keep {
		req, err := sess.receiveRequest()
		if err != nil {
			if atomic.LoadInt32(&srv.running) == 0 {
				err = ErrShuttingDown
			}
			if err != ErrPeerClosed {
				log.WithError(err).Debug("session ended")
			}
			sess.terminate()
			return
		}

		resp, keep := srv.Dispatch(sess, req)
		sess.keep = keep

		if err := sess.sendResponse(resp); err != nil {
			log.WithError(err).Debug("failed to send response")
			sess.terminate()
			return
		}
	}
	sess.terminate()
}
