package fixtures

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/golang/snappy"

	"github.com/penwyp/go-trace-monitor/internal/core/model"
)

// CaptureGenerator writes synthetic page load captures for tests.
type CaptureGenerator struct {
	baseDir string
}

// NewCaptureGenerator creates a generator writing below baseDir.
func NewCaptureGenerator(baseDir string) *CaptureGenerator {
	return &CaptureGenerator{baseDir: baseDir}
}

func span(t model.RecordType, start, end float64, data model.EventData, children ...model.RawEvent) model.RawEvent {
	return model.RawEvent{
		Type:      t,
		StartTime: model.Seconds(start),
		EndTime:   model.Seconds(end),
		Data:      data,
		Children:  children,
	}
}

func mark(t model.RecordType, at float64) model.RawEvent {
	return model.RawEvent{Type: t, StartTime: model.Seconds(at)}
}

// PageLoadEvents is a small page load: the document is parsed, a script is
// requested and evaluated, a timer fires, and the page is laid out and
// painted. Resource and timer records arrive in separate top-level events
// and correlate by identifier.
func PageLoadEvents() []model.RawEvent {
	return []model.RawEvent{
		span(model.RecordParseHTML, 0, 0.2, model.EventData{URL: "https://example.com/"},
			span(model.RecordScheduleResourceRequest, 0.05, 0.06, model.EventData{URL: "https://example.com/app.js"}),
			span(model.RecordResourceSendRequest, 0.06, 0.07, model.EventData{Identifier: "1", URL: "https://example.com/app.js"}),
		),
		span(model.RecordResourceReceiveResponse, 0.3, 0.32, model.EventData{Identifier: "1"}),
		span(model.RecordResourceFinish, 0.4, 0.41, model.EventData{Identifier: "1"}),
		span(model.RecordEvaluateScript, 0.45, 0.7, model.EventData{URL: "https://example.com/app.js", ScriptName: "app.js", ScriptLine: 1},
			span(model.RecordTimerInstall, 0.5, 0.5, model.EventData{TimerID: "1"}),
			span(model.RecordFunctionCall, 0.55, 0.65, model.EventData{ScriptName: "app.js", ScriptLine: 42}),
		),
		mark(model.RecordMarkDOMContent, 0.72),
		span(model.RecordTimerFire, 0.9, 1.0, model.EventData{TimerID: "1"},
			span(model.RecordFunctionCall, 0.9, 0.99, model.EventData{ScriptName: "app.js", ScriptLine: 57}),
		),
		span(model.RecordRecalculateStyles, 1.0, 1.05, model.EventData{}),
		span(model.RecordLayout, 1.05, 1.2, model.EventData{}),
		span(model.RecordPaint, 1.2, 1.25, model.EventData{}),
		mark(model.RecordMarkLoad, 1.22),
	}
}

// SequentialEvents returns n top-level layouts of 0.5s, one per second.
func SequentialEvents(n int) []model.RawEvent {
	events := make([]model.RawEvent, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i)
		events = append(events, span(model.RecordLayout, start, start+0.5, model.EventData{Message: strconv.Itoa(i)}))
	}
	return events
}

// GeneratePageLoad writes PageLoadEvents to name.
func (g *CaptureGenerator) GeneratePageLoad(name string) (string, error) {
	return g.WriteCapture(name, PageLoadEvents())
}

// WriteCapture writes events as JSONL to name below the base directory.
// Names ending in .sz are snappy compressed.
func (g *CaptureGenerator) WriteCapture(name string, events []model.RawEvent) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var w io.Writer = file
	if filepath.Ext(path) == ".sz" {
		sw := snappy.NewBufferedWriter(file)
		defer sw.Close()
		w = sw
	}
	if err := WriteEvents(w, events); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteEvents encodes one event per line.
func WriteEvents(w io.Writer, events []model.RawEvent) error {
	bw := bufio.NewWriter(w)
	for i := range events {
		data, err := sonic.Marshal(&events[i])
		if err != nil {
			return err
		}
		bw.Write(data)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
