package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
)

func sampleSnapshot(t *testing.T) capture.Snapshot {
	t.Helper()
	s, err := capture.NewSession(&capture.Config{PixelWidth: 109})
	require.NoError(t, err)

	events := []*model.RawEvent{
		{
			Type:      model.RecordEvaluateScript,
			StartTime: model.Seconds(0),
			EndTime:   model.Seconds(1),
			Children: []model.RawEvent{
				{Type: model.RecordLayout, StartTime: model.Seconds(0.25), EndTime: model.Seconds(0.5)},
			},
		},
		{Type: model.RecordParseHTML, StartTime: model.Seconds(1), EndTime: model.Seconds(2)},
		{Type: model.RecordMarkLoad, StartTime: model.Seconds(1.5)},
	}
	for _, ev := range events {
		require.NoError(t, s.RecordReceived(ev))
	}
	s.SetAllCollapsed(false)
	return s.Refresh()
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"json", "csv", "table"} {
		t.Run(name, func(t *testing.T) {
			f, err := NewFormatter(name)
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
	_, err := NewFormatter("xml")
	assert.Error(t, err)
}

func TestJSONFormatterFormat(t *testing.T) {
	snap := sampleSnapshot(t)
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, snap))

	var decoded map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(3), decoded["allRecordsCount"])
	assert.Equal(t, float64(3), decoded["visibleRecordsCount"])

	frame := decoded["frame"].(map[string]interface{})
	rows := frame["rows"].([]interface{})
	require.Len(t, rows, 3)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "EvaluateScript", first["type"])
	assert.Equal(t, "scripting", first["category"])
	assert.Contains(t, first, "geometry")

	markers := decoded["markers"].([]interface{})
	require.Len(t, markers, 1)
	marker := markers[0].(map[string]interface{})
	assert.Equal(t, "MarkLoad", marker["kind"])
	assert.Equal(t, 1.5, marker["time"])
	assert.Contains(t, marker, "offset")

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestCSVFormatterFormat(t *testing.T) {
	snap := sampleSnapshot(t)
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, snap))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeaders, records[0])

	layout := records[2]
	assert.Equal(t, "1", layout[1])
	assert.Equal(t, "Layout", layout[2])
	assert.Equal(t, "  Layout", layout[3])
	assert.Equal(t, "rendering", layout[4])
	assert.Equal(t, "0.250000", layout[6])
}

func TestTableFormatterFormat(t *testing.T) {
	snap := sampleSnapshot(t)
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, snap))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, lines[1], "Category")
	assert.Contains(t, lines[3], "Loading")
	assert.Contains(t, lines[3], "1.00s")
	assert.Contains(t, lines[3], "50.0%")
	assert.Contains(t, lines[5], "Rendering")
	assert.Contains(t, lines[5], "250ms")
	assert.Contains(t, lines[7], "Total")
	assert.Contains(t, lines[7], "100.0%")
	assert.Equal(t, "Records: 3 of 3 visible", lines[9])
}

func TestTableFormatterEmpty(t *testing.T) {
	s, err := capture.NewSession(&capture.Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, s.Snapshot()))
	assert.Contains(t, buf.String(), "│ Total")
	assert.Contains(t, buf.String(), "-")
}
