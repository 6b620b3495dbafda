package fenris

import (
	"github.com/sirupsen/logrus"
)

// Dispatcher consumes a (session, request) pair and produces a
// (response, keep_connection) pair, per §4.8. It is expressed as a
// function type (HandlerFunc) with a concrete default implementation
// (*Dispatcher.Handle) so alternate implementations -- e.g. a test
// mock -- can plug in by supplying a different function, generalizing
// the teacher's single `server` type (whose methods were wired one per
// 9P Tmessage in server.go's big switch) and the C++ original's
// polymorphic ClientHandler seam noted in §9.
type Dispatcher struct {
	Tree  *Tree
	Files *FileOps
	Cache *Cache
	Log   *logrus.Logger
}

// HandlerFunc is the single seam §9 asks for in place of a polymorphic
// ClientHandler: (session, request) -> (response, keep_connection).
type HandlerFunc func(s *Session, req Request) (Response, bool)

// NewDispatcher builds a Dispatcher over tree/files/cache.
func NewDispatcher(tree *Tree, files *FileOps, cache *Cache, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{Tree: tree, Files: files, Cache: cache, Log: log}
}

func errorResponse(key string) Response {
	return Response{Type: RespError, Success: false, ErrorMessage: errMsg(key)}
}

func successResponse() Response {
	return Response{Type: RespSuccess, Success: true}
}

// Handle implements HandlerFunc for every command in §4.8's table.
func (d *Dispatcher) Handle(s *Session, req Request) (Response, bool) {
	switch req.Command {
	case CmdPing:
		return d.handlePing(req), true
	case CmdTerminate:
		return d.handleTerminate(s), false
	case CmdCreateFile:
		return d.handleCreateFile(s, req), true
	case CmdReadFile:
		return d.handleReadFile(s, req), true
	case CmdWriteFile:
		return d.handleWriteFile(s, req), true
	case CmdAppendFile:
		return d.handleAppendFile(s, req), true
	case CmdDeleteFile:
		return d.handleDeleteFile(s, req), true
	case CmdInfoFile:
		return d.handleInfoFile(s, req), true
	case CmdCreateDir:
		return d.handleCreateDir(s, req), true
	case CmdListDir:
		return d.handleListDir(s, req), true
	case CmdChangeDir:
		return d.handleChangeDir(s, req), true
	case CmdDeleteDir:
		return d.handleDeleteDir(s, req), true
	default:
		return errorResponse("list_invalid"), true
	}
}

func (d *Dispatcher) handlePing(req Request) Response {
	return Response{Type: RespPong, Success: true, Data: req.Data}
}

func (d *Dispatcher) handleTerminate(s *Session) Response {
	s.terminate()
	return Response{Type: RespTerminated, Success: true}
}

func (d *Dispatcher) handleCreateFile(s *Session, req Request) Response {
	parent, leaf, err := d.Tree.ResolveParent(s.curNode, req.Filename)
	if err != nil {
		return errorResponse("create_failed")
	}

	diskPath := d.Tree.diskPath(parent, leaf)
	ferr, err := d.Tree.CreateChild(parent, leaf, KindFile, func() FileErr {
		return d.Files.CreateFile(diskPath)
	})
	if err == ErrNameExists || ferr == ErrAlreadyExists {
		return errorResponse("create_exists")
	}
	if err != nil || ferr != ErrSuccess {
		return errorResponse("create_failed")
	}
	return successResponse()
}

func (d *Dispatcher) handleReadFile(s *Session, req Request) Response {
	target, err := d.Tree.Resolve(s.curNode, req.Filename)
	if err != nil || target.kind != KindFile {
		return errorResponse("read_not_found")
	}

	target.acquire()
	defer target.release()

	diskPath := d.Tree.PathOf(target)
	if data, ok := d.Cache.Get(diskPath); ok {
		return Response{Type: RespFileContent, Success: true, Data: data}
	}

	data, ferr := d.Files.Read(diskPath)
	if ferr != ErrSuccess {
		return errorResponse("read_not_found")
	}
	d.Cache.Put(diskPath, data)
	return Response{Type: RespFileContent, Success: true, Data: data}
}

func (d *Dispatcher) handleWriteFile(s *Session, req Request) Response {
	target, err := d.Tree.Resolve(s.curNode, req.Filename)
	if err == nil && target.kind == KindFile {
		target.lock()
		target.waitDrained()
		diskPath := d.Tree.PathOf(target)
		ferr := d.Files.Write(diskPath, req.Data)
		if ferr == ErrSuccess {
			d.Cache.Put(diskPath, req.Data)
		}
		target.unlock()
		return writeResult(ferr)
	}
	if err != nil && err != ErrNameNotFound {
		return errorResponse("write_io")
	}

	// Absent: create the file (tree + disk), then write through the
	// node mutex exactly as the existing-file path does (§4.8's
	// WRITE_FILE: "if node absent: create_file + add child; then
	// wait access_count==0; write; update cache").
	parent, leaf, perr := d.Tree.ResolveParent(s.curNode, req.Filename)
	if perr != nil {
		return errorResponse("write_io")
	}
	diskPath := d.Tree.diskPath(parent, leaf)

	var created *node
	ferr, cerr := d.Tree.CreateChild(parent, leaf, KindFile, func() FileErr {
		fe := d.Files.CreateFile(diskPath)
		if fe == ErrAlreadyExists {
			return ErrSuccess
		}
		return fe
	})
	if cerr != nil && cerr != ErrNameExists {
		return errorResponse("write_io")
	}
	if ferr != ErrSuccess {
		return writeResult(ferr)
	}
	created, lookupErr := d.Tree.Resolve(s.curNode, req.Filename)
	if lookupErr != nil {
		return errorResponse("write_io")
	}

	created.lock()
	created.waitDrained()
	ferr = d.Files.Write(diskPath, req.Data)
	if ferr == ErrSuccess {
		d.Cache.Put(diskPath, req.Data)
	}
	created.unlock()
	return writeResult(ferr)
}

func writeResult(ferr FileErr) Response {
	switch ferr {
	case ErrSuccess:
		return successResponse()
	case ErrPermissionDenied:
		return errorResponse("write_denied")
	default:
		return errorResponse("write_io")
	}
}

func (d *Dispatcher) handleAppendFile(s *Session, req Request) Response {
	target, err := d.Tree.Resolve(s.curNode, req.Filename)
	if err != nil || target.kind != KindFile {
		return errorResponse("append_not_found")
	}

	target.lock()
	target.waitDrained()
	diskPath := d.Tree.PathOf(target)
	ferr := d.Files.Append(diskPath, req.Data)
	if ferr == ErrSuccess {
		d.Cache.Invalidate(diskPath)
	}
	target.unlock()

	switch ferr {
	case ErrSuccess:
		return successResponse()
	case ErrNotFound:
		return errorResponse("append_not_found")
	default:
		return errorResponse("append_io")
	}
}

func (d *Dispatcher) handleDeleteFile(s *Session, req Request) Response {
	parent, leaf, err := d.Tree.ResolveParent(s.curNode, req.Filename)
	if err != nil {
		return errorResponse("delete_not_found")
	}

	var diskPath string
	ferr, derr := d.Tree.DeleteChild(parent, leaf, false, true, func(child *node) FileErr {
		if child.kind != KindFile {
			return ErrInvalidPathOp
		}
		diskPath = d.Tree.diskPath(parent, leaf)
		fe := d.Files.DeleteFile(diskPath)
		if fe == ErrSuccess {
			d.Cache.Invalidate(diskPath)
		}
		return fe
	})
	if derr == ErrNameNotFound {
		return errorResponse("delete_not_found")
	}
	if derr != nil || ferr != ErrSuccess {
		return errorResponse("delete_not_found")
	}
	return successResponse()
}

func (d *Dispatcher) handleInfoFile(s *Session, req Request) Response {
	target, err := d.Tree.Resolve(s.curNode, req.Filename)
	if err != nil {
		return errorResponse("info_not_found")
	}

	target.acquire()
	defer target.release()

	diskPath := d.Tree.PathOf(target)
	info, ferr := d.Files.Stat(diskPath)
	if ferr != ErrSuccess {
		return errorResponse("info_not_found")
	}
	wire := toWireFileInfo(info)
	return Response{Type: RespFileInfo, Success: true, Info: &wire}
}

func (d *Dispatcher) handleCreateDir(s *Session, req Request) Response {
	parent, leaf, err := d.Tree.ResolveParent(s.curNode, req.Filename)
	if err != nil {
		return errorResponse("create_failed")
	}

	diskPath := d.Tree.diskPath(parent, leaf)
	ferr, cerr := d.Tree.CreateChild(parent, leaf, KindDir, func() FileErr {
		return d.Files.Mkdir(diskPath)
	})
	if cerr == ErrNameExists || ferr == ErrDirectoryAlreadyExists {
		return errorResponse("mkdir_exists")
	}
	if cerr != nil || ferr != ErrSuccess {
		return errorResponse("create_failed")
	}
	return successResponse()
}

func (d *Dispatcher) handleListDir(s *Session, req Request) Response {
	target, err := d.Tree.Resolve(s.curNode, req.Filename)
	if err != nil {
		return errorResponse("list_invalid")
	}
	if target.kind != KindDir {
		return errorResponse("list_invalid")
	}

	target.acquire()
	defer target.release()

	diskPath := d.Tree.PathOf(target)
	entries, ferr := d.Files.List(diskPath)
	if ferr != ErrSuccess {
		return errorResponse("list_not_found")
	}

	listing := make([]WireFileInfo, 0, len(entries))
	for _, e := range entries {
		listing = append(listing, toWireFileInfo(e))
	}
	return Response{Type: RespDirListing, Success: true, Listing: listing}
}

func (d *Dispatcher) handleChangeDir(s *Session, req Request) Response {
	cursor := NewCursor(d.Tree, s.curNode, s.curDir, s.depth)
	if err := cursor.WalkDir(req.Filename); err != nil {
		cursor.Release()
		return errorResponse("cd_invalid")
	}
	s.changeCursor(&cursor)
	return successResponse()
}

func (d *Dispatcher) handleDeleteDir(s *Session, req Request) Response {
	parent, leaf, err := d.Tree.ResolveParent(s.curNode, req.Filename)
	if err != nil {
		return errorResponse("rmdir_not_found")
	}

	var diskPath string
	ferr, derr := d.Tree.DeleteChild(parent, leaf, true, false, func(child *node) FileErr {
		if child.kind != KindDir {
			return ErrInvalidPathOp
		}
		diskPath = d.Tree.diskPath(parent, leaf)
		return d.Files.Rmdir(diskPath, true)
	})
	if derr == ErrNameNotFound {
		return errorResponse("rmdir_not_found")
	}
	if derr == ErrNodeBusy {
		return errorResponse("rmdir_in_use")
	}
	if ferr == ErrDirectoryNotEmpty {
		return errorResponse("rmdir_not_empty")
	}
	if derr != nil || ferr != ErrSuccess {
		return errorResponse("rmdir_not_found")
	}
	return successResponse()
}
