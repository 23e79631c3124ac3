package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-trace-monitor/internal/core/model"
)

const validCapture = `{"type":"ScheduleResourceRequest","startTime":0,"endTime":2,"data":{"url":"https://example.com/a.js"},"children":[{"type":"ResourceSendRequest","startTime":1,"endTime":1.5,"data":{"identifier":"1","url":"https://example.com/a.js"}}]}
{"type":"ResourceReceiveResponse","startTime":5,"endTime":5.25,"data":{"identifier":"1"}}
{"type":"MarkLoad","startTime":6}
`

func writeCapture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewParser(t *testing.T) {
	p := NewParser(4)
	assert.Equal(t, 4, p.concurrency)
	assert.Empty(t, p.cache)

	assert.Equal(t, 1, NewParser(0).concurrency)
}

func TestParserParseFileValidJSONL(t *testing.T) {
	p := NewParser(1)
	res, err := p.ParseFile(writeCapture(t, "capture.jsonl", validCapture))
	require.NoError(t, err)

	require.Len(t, res.Events, 3)
	assert.Equal(t, 3, res.Lines)
	assert.Zero(t, res.Skipped)
	assert.Zero(t, res.Invalid)

	first := res.Events[0]
	assert.Equal(t, model.RecordScheduleResourceRequest, first.Type)
	assert.Equal(t, "https://example.com/a.js", first.Data.URL)
	require.Len(t, first.Children, 1)
	assert.Equal(t, "1", first.Children[0].Data.Identifier)

	assert.Equal(t, model.RecordMarkLoad, res.Events[2].Type)
	assert.Nil(t, res.Events[2].EndTime)
}

func TestParserParseFileInvalidLines(t *testing.T) {
	content := `{"type":"Layout","startTime":1,"endTime":2}
invalid json line here

{"type":"Paint","endTime":3}
{"type":"NoSuchRecord","startTime":1}
{incomplete json`

	t.Run("lenient", func(t *testing.T) {
		res, err := NewParser(1).ParseFile(writeCapture(t, "mixed.jsonl", content))
		require.NoError(t, err, "parser should skip invalid lines and continue")
		assert.Equal(t, 5, res.Lines)
		assert.Equal(t, 2, res.Skipped)
		assert.Equal(t, 2, res.Invalid)
		assert.Len(t, res.Events, 3, "invalid events are forwarded for rejection")
	})

	t.Run("strict", func(t *testing.T) {
		p := NewParser(1)
		p.Strict = true
		res, err := p.ParseFile(writeCapture(t, "mixed.jsonl", content))
		require.NoError(t, err)
		require.Len(t, res.Events, 1)
		assert.Equal(t, model.RecordLayout, res.Events[0].Type)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		event *model.RawEvent
		ok    bool
	}{
		{name: "valid", event: &model.RawEvent{Type: model.RecordLayout, StartTime: model.Seconds(1)}, ok: true},
		{name: "no_type", event: &model.RawEvent{StartTime: model.Seconds(1)}},
		{name: "no_start", event: &model.RawEvent{Type: model.RecordLayout}},
		{name: "nil", event: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.event)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrMalformedEvent))
		})
	}
}

func TestParserParseFileEmptyFile(t *testing.T) {
	res, err := NewParser(1).ParseFile(writeCapture(t, "empty.jsonl", ""))
	require.NoError(t, err)
	assert.Empty(t, res.Events)
}

func TestParserParseFileNonExistent(t *testing.T) {
	res, err := NewParser(1).ParseFile("/path/that/does/not/exist.jsonl")
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestParserParseFileSnappy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.jsonl.sz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := snappy.NewBufferedWriter(f)
	_, err = w.Write([]byte(validCapture))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	res, err := NewParser(1).ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, res.Events, 3)
}

func TestParserParseFileCache(t *testing.T) {
	p := NewParser(1)
	path := writeCapture(t, "cached.jsonl", validCapture)

	first, err := p.ParseFile(path)
	require.NoError(t, err)
	second, err := p.ParseFile(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Contains(t, p.cache, path)
}

func TestParserParseFileCacheInvalidatedOnChange(t *testing.T) {
	p := NewParser(1)
	path := writeCapture(t, "changing.jsonl", validCapture)

	first, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, first.Events, 3)

	appendFile(t, path, `{"type":"Layout","startTime":7,"endTime":8}`+"\n")
	second, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, second.Events, 4)
}

func TestParserParseReader(t *testing.T) {
	res, err := NewParser(1).ParseReader(strings.NewReader(validCapture))
	require.NoError(t, err)
	assert.Len(t, res.Events, 3)
}

func TestParserParseFilesConcurrent(t *testing.T) {
	p := NewParser(4)
	dir := t.TempDir()

	var files []string
	for i := 0; i < 10; i++ {
		path := filepath.Join(dir, fmt.Sprintf("file%d.jsonl", i))
		line := fmt.Sprintf(`{"type":"Layout","startTime":%d,"endTime":%d.5}`, i, i)
		require.NoError(t, os.WriteFile(path, []byte(line), 0644))
		files = append(files, path)
	}

	count := 0
	for result := range p.ParseFiles(files) {
		count++
		assert.NoError(t, result.Error)
		assert.Contains(t, files, result.File)
		require.NotNil(t, result.Result)
		assert.Len(t, result.Result.Events, 1)
	}
	assert.Equal(t, 10, count)
}
