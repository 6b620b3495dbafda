package fenris

import (
	"strings"
	"sync"
)

// Tree is the in-memory shadow of the real filesystem under the
// server's root directory (§3, §4.5). All structural mutation (add,
// remove, and path resolution that walks the children slice) happens
// under the tree-wide mutex; per-node content mutation uses the node's
// own mutex instead, so independent files serialize independently
// (§4.5's concurrency contract).
//
// Adapted from mars9-ramfs's FS type (mars9-ramfs/fs.go), which paired
// a single *node root with a tree-wide sync.Mutex guarding path
// allocation; here the same single-mutex-over-a-node-graph shape is
// kept, generalized from 9P's map-based children and numeric path IDs
// to the ordered children slice and access-count discipline §3/§4.5
// require.
type Tree struct {
	mu   sync.Mutex
	root *node
}

// NewTree creates an empty tree with a freshly created root node.
func NewTree() *Tree {
	return &Tree{root: newNode("/", KindDir, nil)}
}

// Root returns the tree's root node. The root's accessCount is never
// drained to remove it; it has no parent.
func (t *Tree) Root() *node { return t.root }

// splitSegments splits a path on '/', dropping empty segments (repeated
// or trailing slashes) and "." segments -- both handled uniformly
// regardless of position, which is the corrected behavior for the
// trailing-slash/repeated-slash/"."/".." edge cases the Open Question
// in §9 calls out (the source accumulated a partial current-directory
// string overwritten unconditionally on the last "./.." step).
func splitSegments(path string) []string {
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == "" || seg == "." {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Resolve walks path starting from `from` (or from the root, if path
// begins with "/") and returns the node it names, without touching any
// access counter. It is used for lookups that only need a snapshot
// (e.g. computing a disk path) rather than a held handle.
func (t *Tree) Resolve(from *node, path string) (*node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolveLocked(from, path)
}

func (t *Tree) resolveLocked(from *node, path string) (*node, error) {
	cur := from
	if strings.HasPrefix(path, "/") {
		cur = t.root
	}

	segs := splitSegments(path)
	for i, seg := range segs {
		if seg == ".." {
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		}

		if cur.kind != KindDir {
			return nil, ErrNotDirectory
		}
		child := cur.childByName(seg)
		if child == nil {
			return nil, ErrNameNotFound
		}
		if child.kind != KindDir && i != len(segs)-1 {
			return nil, ErrNotDirectory
		}
		cur = child
	}
	return cur, nil
}

// ResolveParent splits path into (parent directory node, leaf name),
// resolving everything but the final segment. An empty leaf (path is
// "", "/", or "." after normalization) is reported as ErrInvalidPath:
// callers that need the leaf component cannot operate on the tree
// root by name.
func (t *Tree) ResolveParent(from *node, path string) (*node, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := from
	if strings.HasPrefix(path, "/") {
		cur = t.root
	}

	segs := splitSegments(path)
	if len(segs) == 0 {
		return nil, "", ErrInvalidPath
	}

	leaf := segs[len(segs)-1]
	for _, seg := range segs[:len(segs)-1] {
		if seg == ".." {
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		}
		if cur.kind != KindDir {
			return nil, "", ErrNotDirectory
		}
		child := cur.childByName(seg)
		if child == nil {
			return nil, "", ErrNameNotFound
		}
		cur = child
	}
	if leaf == ".." {
		if cur.parent != nil {
			return cur.parent, cur.name, nil
		}
		return cur, "..", nil
	}
	return cur, leaf, nil
}

// PathOf reconstructs n's absolute tree path by walking parent links to
// the root (§3's invariant that this walk always terminates at root).
func (t *Tree) PathOf(n *node) string {
	if n == t.root {
		return "/"
	}
	var parts []string
	for cur := n; cur != nil && cur != t.root; cur = cur.parent {
		parts = append([]string{cur.name}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

// Add allocates a new child node named `name` under parent, per §4.5's
// add(path, kind): require directory, refuse duplicate names, append to
// the ordered children list, and set the new node's parent back-ref.
func (t *Tree) Add(parent *node, name string, kind NodeKind) (*node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if parent.kind != KindDir {
		return nil, ErrNotDirectory
	}
	if parent.childByName(name) != nil {
		return nil, ErrNameExists
	}

	child := newNode(name, kind, parent)
	parent.addChild(child)
	return child, nil
}

// Remove detaches n from its parent's children, refusing if n is still
// in use (accessCount > 0) per §4.5/§8 invariant 4.
func (t *Tree) Remove(n *node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n.parent == nil {
		return perror("cannot remove root")
	}
	if n.inUse() {
		return ErrNodeBusy
	}
	n.parent.removeChild(n)
	return nil
}

// Cursor is a session's scratch position while walking CHANGE_DIR or
// normalizing a request's filename (§4.8): it tracks a node, its tree
// path, and the depth (segment count from root) without yet being
// committed to any session. Cursor holds acquire()'d counts on every
// node it currently points at that were taken during the walk; Release
// drops them. This realizes §4.8's "resolution operates on a scratch
// cursor that is rolled back if any segment is missing."
type Cursor struct {
	tree  *Tree
	node  *node
	path  string
	depth int
	held  []*node
}

// NewCursor creates a cursor positioned at node/path/depth without
// acquiring it -- used for the starting point of a walk, which is
// already held by the session itself.
func NewCursor(t *Tree, n *node, path string, depth int) Cursor {
	return Cursor{tree: t, node: n, path: path, depth: depth}
}

// Node, Path and Depth expose the cursor's current position.
func (c Cursor) Node() *node  { return c.node }
func (c Cursor) Path() string { return c.path }
func (c Cursor) Depth() int   { return c.depth }

// WalkDir advances the cursor through path one segment at a time,
// requiring every intermediate and final node to be a directory
// (CHANGE_DIR's contract). The walk keeps exactly one scratch
// acquisition live at a time -- on the node it currently stands on --
// acquiring the next position and releasing the previous one as it
// steps, per §4.5's "increments the new, then decrements the old".
// That holds for ".." steps as much as forward steps: a directory the
// walk merely passes through is never left with an elevated access
// count. On error, the in-progress scratch acquisition is released
// before returning, leaving the cursor unchanged (§4.8: "on failure,
// counters on partially-walked scratch nodes are rolled back").
func (c *Cursor) WalkDir(path string) error {
	c.tree.mu.Lock()
	defer c.tree.mu.Unlock()

	cur := c.node
	curPath := c.path
	depth := c.depth

	scratch := cur
	scratch.acquire()

	step := func(next *node) {
		next.acquire()
		scratch.release()
		scratch = next
	}

	if strings.HasPrefix(path, "/") {
		step(c.tree.root)
		cur = c.tree.root
		curPath = "/"
		depth = 0
	}

	for _, seg := range splitSegments(path) {
		if seg == ".." {
			if cur.parent != nil {
				step(cur.parent)
				cur = cur.parent
				depth--
				curPath = c.tree.PathOf(cur)
			}
			continue
		}

		if cur.kind != KindDir {
			scratch.release()
			return ErrNotDirectory
		}
		child := cur.childByName(seg)
		if child == nil {
			scratch.release()
			return ErrInvalidPath
		}
		if child.kind != KindDir {
			scratch.release()
			return ErrNotDirectory
		}

		step(child)
		cur = child
		depth++
		if curPath == "/" {
			curPath = "/" + seg
		} else {
			curPath = curPath + "/" + seg
		}
	}

	c.node = cur
	c.path = curPath
	c.depth = depth
	c.held = append(c.held[:0], scratch)
	return nil
}

// Release drops every scratch acquisition this cursor is holding. It is
// a no-op once the cursor has been committed into a session (session.go
// takes ownership of the holds by clearing `held` via Commit).
func (c *Cursor) Release() {
	for _, n := range c.held {
		n.release()
	}
	c.held = nil
}

// Commit clears the cursor's held-acquisitions bookkeeping without
// releasing them: ownership of those acquire()s transfers to whatever
// now tracks the cursor's final node (the session's current node).
func (c *Cursor) Commit() {
	c.held = nil
}
