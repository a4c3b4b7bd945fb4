package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out", "report.pdf")

	content := "verified copy content"
	written, err := WriteAtomic(dst, 0o644, func(w io.Writer) error {
		_, err := io.Copy(w, strings.NewReader(content))
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	sum := sha256.Sum256([]byte(content))
	if written.SHA256 != hex.EncodeToString(sum[:]) || written.Bytes != int64(len(content)) || written.Path != dst {
		t.Fatalf("unexpected result %+v", written)
	}
	assertNoPartials(t, filepath.Dir(dst))
}

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "report.pdf")
	boom := errors.New("connection reset")

	_, err := WriteAtomic(dst, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("half"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fill error, got %v", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("destination should not exist, stat err=%v", err)
	}
	assertNoPartials(t, dir)
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteAtomic(dst, 0o600, func(w io.Writer) error {
		_, err := w.Write([]byte("new"))
		return err
	}); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "new" {
		t.Fatalf("expected replacement, got %q", got)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	first, err := UniquePath(dir, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if first != filepath.Join(dir, "report.pdf") {
		t.Fatalf("unexpected first path %q", first)
	}
	for _, name := range []string{"report.pdf", "report (1).pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	next, err := UniquePath(dir, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if next != filepath.Join(dir, "report (2).pdf") {
		t.Fatalf("unexpected next path %q", next)
	}
}

func assertNoPartials(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			t.Fatalf("leftover partial file %s", e.Name())
		}
	}
}
