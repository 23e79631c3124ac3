package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTypeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		expected RecordType
	}{
		{name: "timer_fire", jsonData: `"TimerFire"`, expected: RecordTimerFire},
		{name: "send_request", jsonData: `"ResourceSendRequest"`, expected: RecordResourceSendRequest},
		{name: "mark_load", jsonData: `"MarkLoad"`, expected: RecordMarkLoad},
		{name: "unknown_tag", jsonData: `"Bogus"`, expected: RecordUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rt RecordType
			require.NoError(t, sonic.Unmarshal([]byte(tt.jsonData), &rt))
			assert.Equal(t, tt.expected, rt)
		})
	}

	var rt RecordType
	assert.Error(t, sonic.Unmarshal([]byte(`42`), &rt))
}

func TestRawEventDecoding(t *testing.T) {
	line := `{"type":"TimerFire","startTime":1.5,"endTime":1.75,"data":{"timerId":"7"},` +
		`"children":[{"type":"FunctionCall","startTime":1.5,"endTime":1.7,"data":{"scriptName":"a.js","scriptLine":10}}]}`

	var ev RawEvent
	require.NoError(t, sonic.Unmarshal([]byte(line), &ev))

	assert.Equal(t, RecordTimerFire, ev.Type)
	require.NotNil(t, ev.StartTime)
	assert.Equal(t, 1.5, *ev.StartTime)
	assert.Equal(t, "7", ev.Data.TimerID)
	require.Len(t, ev.Children, 1)
	assert.Equal(t, RecordFunctionCall, ev.Children[0].Type)
	assert.Equal(t, "a.js", ev.Children[0].Data.ScriptName)
	assert.Equal(t, 10, ev.Children[0].Data.ScriptLine)

	out, err := sonic.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"TimerFire"`)
}

func TestRawEventSpan(t *testing.T) {
	tests := []struct {
		name       string
		event      RawEvent
		start, end float64
	}{
		{name: "regular", event: RawEvent{StartTime: Seconds(1), EndTime: Seconds(3)}, start: 1, end: 3},
		{name: "missing_end", event: RawEvent{StartTime: Seconds(2)}, start: 2, end: 2},
		{name: "end_before_start", event: RawEvent{StartTime: Seconds(5), EndTime: Seconds(4)}, start: 5, end: 5},
		{name: "missing_start", event: RawEvent{EndTime: Seconds(4)}, start: 0, end: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.event.Span()
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestCorrelationKeys(t *testing.T) {
	send := RawEvent{Type: RecordResourceSendRequest, Data: EventData{Identifier: "1", URL: "http://a/"}}

	space, key, ok := send.ContinuationKey()
	assert.True(t, ok)
	assert.Equal(t, KeyRequestURL, space)
	assert.Equal(t, "http://a/", key)

	space, key, ok = send.OpenerKey()
	assert.True(t, ok)
	assert.Equal(t, KeyRequestID, space)
	assert.Equal(t, "1", key)

	fire := RawEvent{Type: RecordTimerFire, Data: EventData{TimerID: "7"}}
	space, _, ok = fire.ContinuationKey()
	assert.True(t, ok)
	assert.Equal(t, KeyTimerID, space)
	_, _, ok = fire.OpenerKey()
	assert.False(t, ok)

	layout := RawEvent{Type: RecordLayout}
	_, _, ok = layout.ContinuationKey()
	assert.False(t, ok)
}

func TestRegistryCoversAllTypes(t *testing.T) {
	for tag, rt := range recordTypeTags {
		style, ok := Style(rt)
		assert.True(t, ok, tag)
		assert.NotEmpty(t, style.Title, tag)
		assert.Equal(t, tag, rt.String())
	}
	_, ok := Style(RecordUnknown)
	assert.False(t, ok)
}

func TestCategoryStats(t *testing.T) {
	var a, b CategoryStats
	a[CategoryLoading] = 1
	b[CategoryLoading] = 0.5
	b[CategoryRendering] = 2
	a.Add(&b)

	assert.Equal(t, 3.5, a.Sum())
	assert.Equal(t, map[string]float64{"loading": 1.5, "scripting": 0, "rendering": 2}, a.Map())

	c, ok := ParseCategory("rendering")
	assert.True(t, ok)
	assert.Equal(t, CategoryRendering, c)
	_, ok = ParseCategory("network")
	assert.False(t, ok)
}
