package analyzer

import (
	"sync/atomic"

	"github.com/penwyp/go-trace-monitor/internal/data/parser"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// LoadStats counts what happened to the captures of one run.
type LoadStats struct {
	files    int64
	failures int64
	lines    int64
	events   int64
	skipped  int64
	invalid  int64
	rejected int64
}

// StatsSummary is a point-in-time copy of LoadStats.
type StatsSummary struct {
	Files    int64
	Failures int64
	Lines    int64
	Events   int64
	Skipped  int64
	Invalid  int64
	Rejected int64
}

func NewLoadStats() *LoadStats {
	return &LoadStats{}
}

// AddResult records one successfully parsed capture.
func (s *LoadStats) AddResult(res *parser.Result) {
	atomic.AddInt64(&s.files, 1)
	atomic.AddInt64(&s.lines, int64(res.Lines))
	atomic.AddInt64(&s.events, int64(len(res.Events)))
	atomic.AddInt64(&s.skipped, int64(res.Skipped))
	atomic.AddInt64(&s.invalid, int64(res.Invalid))
}

// IncrementFailure counts a capture that could not be read.
func (s *LoadStats) IncrementFailure() {
	atomic.AddInt64(&s.files, 1)
	atomic.AddInt64(&s.failures, 1)
}

// IncrementRejected counts an event the session refused.
func (s *LoadStats) IncrementRejected() {
	atomic.AddInt64(&s.rejected, 1)
}

func (s *LoadStats) Summary() StatsSummary {
	return StatsSummary{
		Files:    atomic.LoadInt64(&s.files),
		Failures: atomic.LoadInt64(&s.failures),
		Lines:    atomic.LoadInt64(&s.lines),
		Events:   atomic.LoadInt64(&s.events),
		Skipped:  atomic.LoadInt64(&s.skipped),
		Invalid:  atomic.LoadInt64(&s.invalid),
		Rejected: atomic.LoadInt64(&s.rejected),
	}
}

// PrintFinalStats logs the totals of the run.
func (s *LoadStats) PrintFinalStats() {
	sum := s.Summary()
	util.LogInfo("Load statistics complete",
		util.F("files", sum.Files),
		util.F("failures", sum.Failures),
		util.F("events", sum.Events))

	if sum.Skipped > 0 || sum.Invalid > 0 || sum.Rejected > 0 {
		util.LogWarnf("Dropped input: %d of %d lines were not JSON, %d events invalid, %d rejected",
			sum.Skipped, sum.Lines, sum.Invalid, sum.Rejected)
	}
}
