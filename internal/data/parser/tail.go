package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// Tail reads a growing JSONL capture incrementally. A trailing line without
// a newline is held back until it is completed.
type Tail struct {
	path    string
	offset  int64
	inode   uint64
	partial []byte
	parser  *Parser
}

// NewTail creates a tail positioned at the start of path. Compressed
// captures cannot be tailed.
func NewTail(path string, p *Parser) (*Tail, error) {
	if filepath.Ext(path) == SnappyExt {
		return nil, fmt.Errorf("cannot tail compressed capture %s", path)
	}
	if p == nil {
		p = NewParser(1)
	}
	return &Tail{path: path, parser: p}, nil
}

// Offset returns the number of bytes consumed so far.
func (t *Tail) Offset() int64 {
	return t.offset
}

// Reset rewinds to the start of the file.
func (t *Tail) Reset() {
	t.offset = 0
	t.partial = nil
}

// Next decodes the lines appended since the previous call. truncated
// reports that the file shrank or was replaced, and reading restarted from
// the beginning.
func (t *Tail) Next() (res *Result, truncated bool, err error) {
	file, err := os.Open(t.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open capture %s: %w", t.path, err)
	}
	defer file.Close()

	info, err := util.GetOpenFileInfo(file)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat capture %s: %w", t.path, err)
	}
	replaced := t.inode != 0 && info.Inode != t.inode
	if info.Size < t.offset || replaced {
		t.Reset()
		truncated = true
	}
	t.inode = info.Inode

	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return nil, truncated, fmt.Errorf("failed to seek capture %s: %w", t.path, err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, truncated, fmt.Errorf("failed to read capture %s: %w", t.path, err)
	}
	t.offset += int64(len(data))

	if len(t.partial) > 0 {
		data = append(t.partial, data...)
		t.partial = nil
	}

	res = &Result{Events: make([]model.RawEvent, 0)}
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		t.parser.consumeLine(res, data[:i])
		data = data[i+1:]
	}
	if len(data) > 0 {
		t.partial = bytes.Clone(data)
	}
	return res, truncated, nil
}
