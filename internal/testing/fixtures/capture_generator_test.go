package fixtures

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-trace-monitor/internal/data/parser"
)

func TestGeneratePageLoad(t *testing.T) {
	g := NewCaptureGenerator(t.TempDir())

	path, err := g.GeneratePageLoad("page.jsonl")
	require.NoError(t, err)

	res, err := parser.NewParser(1).ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, res.Events, len(PageLoadEvents()))
	assert.Zero(t, res.Skipped)
	assert.Zero(t, res.Invalid)
}

func TestWriteCaptureCompressed(t *testing.T) {
	dir := t.TempDir()
	g := NewCaptureGenerator(dir)

	path, err := g.WriteCapture(filepath.Join("nested", "seq.jsonl.sz"), SequentialEvents(25))
	require.NoError(t, err)

	res, err := parser.NewParser(1).ParseFile(path)
	require.NoError(t, err)
	require.Len(t, res.Events, 25)
	assert.Equal(t, "24", res.Events[24].Data.Message)
}
