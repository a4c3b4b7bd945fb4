package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates dir/name with a repeating pattern of size bytes and returns
// the full path. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, dir, name string, size int64) string {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	return WriteContent(t, dir, name, bytes.Repeat([]byte{0x42}, int(size)))
}

// WriteContent creates dir/name with the given bytes and returns the full path.
func WriteContent(t testing.TB, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
