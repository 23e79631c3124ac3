package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/penwyp/go-trace-monitor/internal/util"
)

// Capture file suffixes, matched case-insensitively.
var captureSuffixes = []string{".jsonl", ".jsonl.sz"}

// FileScanner collects capture files from files and directories.
type FileScanner struct {
	paths []string
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(paths ...string) *FileScanner {
	return &FileScanner{paths: paths}
}

// IsCapture reports whether path names a plain or snappy-compressed JSONL capture.
func IsCapture(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range captureSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Scan returns every capture under the configured paths. A path naming a
// file is returned as is, whatever its suffix. Directories are walked
// recursively and unreadable entries skipped. Results are sorted and
// deduplicated.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	for _, root := range s.paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		util.LogDebugf("Start scanning directory: %s", root)
		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				util.LogDebugf("Skip file (error): %s - %v", path, err)
				return nil
			}
			if info.IsDir() {
				dirCount++
				return nil
			}
			totalCount++
			if IsCapture(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	files = slices.Compact(files)

	util.LogDebugf("File scan completed: duration %v, scanned %d directories, %d files, found %d captures",
		time.Since(start), dirCount, totalCount, len(files))
	return files, nil
}
