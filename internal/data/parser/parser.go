package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/snappy"

	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// SnappyExt marks captures compressed with the snappy framing format.
const SnappyExt = ".sz"

// ErrMalformedEvent is returned by Validate for events missing a known type
// or a start time.
var ErrMalformedEvent = model.ErrMalformedEvent

// Validate checks the required fields of a decoded top-level event.
func Validate(raw *model.RawEvent) error {
	return model.Validate(raw)
}

// Result is the decoded content of one capture.
type Result struct {
	Events []model.RawEvent

	Lines   int // non-empty lines read
	Skipped int // lines that were not valid JSON events
	Invalid int // decoded events failing Validate
}

// Parser decodes JSONL event captures, one top-level raw event per line.
type Parser struct {
	concurrency int

	// Strict drops events failing Validate instead of forwarding them to
	// the session, which reports them as rejected.
	Strict bool

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// cacheEntry remembers which revision of a file a result was decoded from.
type cacheEntry struct {
	version string
	result  *Result
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File   string
	Result *Result
	Error  error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string]cacheEntry),
	}
}

// ParseFile decodes the capture at path. Files ending in .sz are read
// through a snappy stream reader. Results are cached per path until the
// file's inode, size or modification time changes.
func (p *Parser) ParseFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture %s: %w", path, err)
	}
	defer file.Close()

	var version string
	if info, err := util.GetOpenFileInfo(file); err == nil {
		version = info.Version()
	}

	p.mu.Lock()
	if cached, ok := p.cache[path]; ok && version != "" && cached.version == version {
		p.mu.Unlock()
		return cached.result, nil
	}
	p.mu.Unlock()

	util.LogDebugf("Start parsing capture: %s", path)

	var r io.Reader = file
	if filepath.Ext(path) == SnappyExt {
		r = snappy.NewReader(file)
	}

	res, err := p.ParseReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse capture %s: %w", path, err)
	}

	if version != "" {
		p.mu.Lock()
		p.cache[path] = cacheEntry{version: version, result: res}
		p.mu.Unlock()
	}

	util.LogDebugf("Parsed %s: %d events, %d skipped lines, %d invalid events",
		path, len(res.Events), res.Skipped, res.Invalid)
	return res, nil
}

// ParseReader decodes JSONL from r. Lines that are not JSON objects are
// skipped and counted.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	res := &Result{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		p.consumeLine(res, scanner.Bytes())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Parser) consumeLine(res *Result, line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	res.Lines++

	var ev model.RawEvent
	if err := sonic.Unmarshal(line, &ev); err != nil {
		res.Skipped++
		util.LogDebugf("Skip invalid JSON line %d - %v", res.Lines, err)
		return
	}
	if err := Validate(&ev); err != nil {
		res.Invalid++
		if p.Strict {
			util.LogDebugf("Drop line %d - %v", res.Lines, err)
			return
		}
	}
	res.Events = append(res.Events, ev)
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebugf("Start concurrent parsing of %d captures, concurrency: %d", len(files), p.concurrency)

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res, err := p.ParseFile(f)
			results <- ParseResult{File: f, Result: res, Error: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebugf("Concurrent parsing finished, total duration: %v", time.Since(start))
	}()

	return results
}
