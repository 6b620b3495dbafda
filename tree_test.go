package fenris

import (
	"sync"
	"testing"
	"time"
)

func TestTreeAddAndResolve(t *testing.T) {
	tr := NewTree()
	root := tr.Root()

	dir, err := tr.Add(root, "etc", KindDir)
	if err != nil {
		t.Fatalf("add dir: %v", err)
	}
	if _, err := tr.Add(dir, "hosts", KindFile); err != nil {
		t.Fatalf("add file: %v", err)
	}

	n, err := tr.Resolve(root, "/etc/hosts")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n.kind != KindFile {
		t.Fatalf("expected file node")
	}
}

func TestTreeResolveDotDot(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	a, _ := tr.Add(root, "a", KindDir)
	b, _ := tr.Add(a, "b", KindDir)

	n, err := tr.Resolve(b, "../../a/b")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n != b {
		t.Fatalf("expected to resolve back to b")
	}
}

func TestTreeAddDuplicateNameFails(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	if _, err := tr.Add(root, "x", KindDir); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := tr.Add(root, "x", KindFile); err != ErrNameExists {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
}

func TestTreeRemoveRefusesWhenInUse(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	dir, _ := tr.Add(root, "busy", KindDir)
	dir.acquire()

	if err := tr.Remove(dir); err != ErrNodeBusy {
		t.Fatalf("expected ErrNodeBusy, got %v", err)
	}

	dir.release()
	if err := tr.Remove(dir); err != nil {
		t.Fatalf("remove after release: %v", err)
	}
}

func TestCreateChildSerializesConcurrentCreates(t *testing.T) {
	tr := NewTree()
	root := tr.Root()

	var wg sync.WaitGroup
	results := make([]FileErr, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ferr, _ := tr.CreateChild(root, "same-name", KindFile, func() FileErr {
				return ErrSuccess
			})
			results[i] = ferr
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, r := range results {
		if r == ErrSuccess {
			successes++
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 success, got %d", successes)
	}
}

func TestDeleteChildWaitsForDrain(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	file, _ := tr.Add(root, "f", KindFile)
	file.acquire()

	done := make(chan FileErr, 1)
	go func() {
		ferr, _ := tr.DeleteChild(root, "f", false, true, func(c *node) FileErr {
			return ErrSuccess
		})
		done <- ferr
	}()

	select {
	case <-done:
		t.Fatalf("delete returned before drain")
	case <-time.After(50 * time.Millisecond):
	}

	file.release()

	select {
	case ferr := <-done:
		if ferr != ErrSuccess {
			t.Fatalf("expected success, got %v", ferr)
		}
	case <-time.After(time.Second):
		t.Fatalf("delete never unblocked after release")
	}
}

func TestDeleteChildRefusesImmediatelyWithoutWait(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	dir, _ := tr.Add(root, "d", KindDir)
	dir.acquire()
	defer dir.release()

	_, err := tr.DeleteChild(root, "d", true, false, func(c *node) FileErr {
		return ErrSuccess
	})
	if err != ErrNodeBusy {
		t.Fatalf("expected ErrNodeBusy, got %v", err)
	}
}

func TestCursorWalkDirRollsBackOnFailure(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	a, _ := tr.Add(root, "a", KindDir)

	cur := NewCursor(tr, root, "/", 0)
	if err := cur.WalkDir("a/missing"); err == nil {
		t.Fatalf("expected walk failure")
	}
	if a.inUse() {
		t.Fatalf("expected rollback to release scratch acquisitions")
	}
}

func TestCursorWalkDirCommits(t *testing.T) {
	tr := NewTree()
	root := tr.Root()
	a, _ := tr.Add(root, "a", KindDir)
	b, _ := tr.Add(a, "b", KindDir)

	cur := NewCursor(tr, root, "/", 0)
	if err := cur.WalkDir("a/b"); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if cur.Node() != b {
		t.Fatalf("expected cursor at b")
	}
	if cur.Path() != "/a/b" {
		t.Fatalf("expected path /a/b, got %s", cur.Path())
	}
	if a.inUse() {
		t.Fatalf("intermediate node a should be released once the walk steps past it")
	}
	if !b.inUse() {
		t.Fatalf("expected final node b held until commit")
	}
	cur.Commit()
	cur.Release()
	if !b.inUse() {
		t.Fatalf("commit should not release the final node's acquisition")
	}
	b.release()
}
