package fenris

// CreateChild performs the check-then-disk-create-then-link sequence
// for CREATE_FILE/CREATE_DIR/WRITE_FILE-of-an-absent-path as a single
// critical section under the tree-wide mutex, so that two concurrent
// creates for the same name are serialized and exactly one of them
// observes success (§8's boundary behavior). performDisk is called
// while the tree mutex is held; it must only touch the filesystem, not
// the tree.
func (t *Tree) CreateChild(parent *node, leaf string, kind NodeKind, performDisk func() FileErr) (FileErr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if parent.kind != KindDir {
		return ErrUnknown, ErrNotDirectory
	}
	if parent.childByName(leaf) != nil {
		return ErrAlreadyExists, nil
	}

	ferr := performDisk()
	if ferr != ErrSuccess {
		return ferr, nil
	}

	child := newNode(leaf, kind, parent)
	parent.addChild(child)
	return ferr, nil
}

// DeleteChild finds `leaf` under parent, waits for (or refuses on) its
// access count, runs performDisk, and -- on success -- detaches it
// from parent, all inside one tree-wide-mutex critical section with
// the child's own node mutex nested inside it (§5: tree-mutex ->
// node-mutex, never the reverse). sync.Cond.Wait only releases the
// node mutex while parked, so the tree mutex stays held for the whole
// operation -- correct per the lock order, and acceptable because a
// delete is already a structural change that needs exclusivity.
//
// If wait is true, a busy node blocks until drained (DELETE_FILE:
// "wait access_count==0 on file", §4.8, and boundary test "write
// blocks until N readers finish" generalizes the same way to delete).
// If wait is false, a busy node fails immediately with ErrNodeBusy
// (DELETE_DIR's "refuse if access_count>0" / InUse, §4.8 and §8).
func (t *Tree) DeleteChild(parent *node, leaf string, requireEmpty, wait bool, performDisk func(child *node) FileErr) (FileErr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	child := parent.childByName(leaf)
	if child == nil {
		return ErrNotFound, ErrNameNotFound
	}

	child.lock()
	defer child.unlock()

	if wait {
		child.waitDrained()
	} else if child.accessCount > 0 {
		return ErrUnknown, ErrNodeBusy
	}
	if requireEmpty && len(child.children) > 0 {
		return ErrDirectoryNotEmpty, nil
	}

	ferr := performDisk(child)
	if ferr != ErrSuccess {
		return ferr, nil
	}

	parent.removeChild(child)
	return ferr, nil
}

// diskPath joins a parent node's tree path with a leaf name.
func (t *Tree) diskPath(parent *node, leaf string) string {
	base := t.PathOf(parent)
	if base == "/" {
		return "/" + leaf
	}
	return base + "/" + leaf
}
