package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
}

func TestIsCapture(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"trace.jsonl", true},
		{"TRACE.JSONL", true},
		{"trace.jsonl.sz", true},
		{"trace.json", false},
		{"trace.sz", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCapture(tt.path))
		})
	}
}

func TestFileScannerScanDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.jsonl"))
	touch(t, filepath.Join(dir, "a.jsonl.sz"))
	touch(t, filepath.Join(dir, "readme.txt"))
	touch(t, filepath.Join(dir, "nested", "c.JSONL"))

	files, err := NewFileScanner(dir).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jsonl.sz"),
		filepath.Join(dir, "b.jsonl"),
		filepath.Join(dir, "nested", "c.JSONL"),
	}, files)
}

func TestFileScannerExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	odd := filepath.Join(dir, "capture.log")
	touch(t, odd)
	touch(t, filepath.Join(dir, "x.jsonl"))

	// Explicit files are kept regardless of suffix, duplicates collapse.
	files, err := NewFileScanner(odd, dir, filepath.Join(dir, "x.jsonl")).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{odd, filepath.Join(dir, "x.jsonl")}, files)
}

func TestFileScannerEmptyDirectory(t *testing.T) {
	files, err := NewFileScanner(t.TempDir()).Scan()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileScannerMissingPath(t *testing.T) {
	_, err := NewFileScanner(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}
