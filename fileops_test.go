package fenris

import (
	"path/filepath"
	"testing"
)

func TestFileOpsCreateReadWriteAppend(t *testing.T) {
	root := t.TempDir()
	fo, err := NewFileOps(root)
	if err != nil {
		t.Fatalf("new fileops: %v", err)
	}

	if ferr := fo.CreateFile("/a.txt"); ferr != ErrSuccess {
		t.Fatalf("create: %v", ferr)
	}
	if ferr := fo.CreateFile("/a.txt"); ferr != ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", ferr)
	}

	if ferr := fo.Write("/a.txt", []byte("hello")); ferr != ErrSuccess {
		t.Fatalf("write: %v", ferr)
	}
	data, ferr := fo.Read("/a.txt")
	if ferr != ErrSuccess {
		t.Fatalf("read: %v", ferr)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", data)
	}

	if ferr := fo.Append("/a.txt", []byte(" world")); ferr != ErrSuccess {
		t.Fatalf("append: %v", ferr)
	}
	data, _ = fo.Read("/a.txt")
	if string(data) != "hello world" {
		t.Fatalf("expected hello world, got %q", data)
	}
}

func TestFileOpsRejectsEscape(t *testing.T) {
	root := t.TempDir()
	fo, _ := NewFileOps(root)

	if ferr := fo.CreateFile("/../escape.txt"); ferr != ErrInvalidPathOp {
		t.Fatalf("expected ErrInvalidPathOp, got %v", ferr)
	}
}

func TestFileOpsMkdirAndList(t *testing.T) {
	root := t.TempDir()
	fo, _ := NewFileOps(root)

	if ferr := fo.Mkdir("/dir"); ferr != ErrSuccess {
		t.Fatalf("mkdir: %v", ferr)
	}
	if ferr := fo.CreateFile("/dir/f1"); ferr != ErrSuccess {
		t.Fatalf("create: %v", ferr)
	}
	if ferr := fo.CreateFile("/dir/f2"); ferr != ErrSuccess {
		t.Fatalf("create: %v", ferr)
	}

	entries, ferr := fo.List("/dir")
	if ferr != ErrSuccess {
		t.Fatalf("list: %v", ferr)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestFileOpsRmdirNonEmptyVsRecursive(t *testing.T) {
	root := t.TempDir()
	fo, _ := NewFileOps(root)
	fo.Mkdir("/dir")
	fo.CreateFile("/dir/f1")

	if ferr := fo.Rmdir("/dir", false); ferr == ErrSuccess {
		t.Fatalf("expected non-recursive rmdir on non-empty dir to fail")
	}
	if ferr := fo.Rmdir("/dir", true); ferr != ErrSuccess {
		t.Fatalf("recursive rmdir: %v", ferr)
	}
}

func TestFileOpsDeleteRefusesDirectory(t *testing.T) {
	root := t.TempDir()
	fo, _ := NewFileOps(root)
	fo.Mkdir("/dir")

	if ferr := fo.DeleteFile("/dir"); ferr != ErrInvalidPathOp {
		t.Fatalf("expected ErrInvalidPathOp deleting a directory, got %v", ferr)
	}
}

func TestFileOpsStat(t *testing.T) {
	root := t.TempDir()
	fo, _ := NewFileOps(root)
	fo.Write("/a.txt", []byte("12345"))

	info, ferr := fo.Stat("/a.txt")
	if ferr != ErrSuccess {
		t.Fatalf("stat: %v", ferr)
	}
	if info.Size != 5 {
		t.Fatalf("expected size 5, got %d", info.Size)
	}
	if info.Name != filepath.Base("/a.txt") {
		t.Fatalf("unexpected name %q", info.Name)
	}
}
