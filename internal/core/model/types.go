package model

import (
	"github.com/bytedance/sonic"
)

// RecordType is the closed set of instrumentation record kinds.
type RecordType int

const (
	RecordUnknown RecordType = iota
	RecordEventDispatch
	RecordLayout
	RecordRecalculateStyles
	RecordPaint
	RecordParseHTML
	RecordTimerInstall
	RecordTimerRemove
	RecordTimerFire
	RecordXHRReadyStateChange
	RecordXHRLoad
	RecordEvaluateScript
	RecordMarkTimeline
	RecordFunctionCall
	RecordGCEvent
	RecordScheduleResourceRequest
	RecordResourceSendRequest
	RecordResourceReceiveResponse
	RecordResourceReceivedData
	RecordResourceFinish
	RecordMarkDOMContent
	RecordMarkLoad
)

var recordTypeTags = map[string]RecordType{
	"EventDispatch":           RecordEventDispatch,
	"Layout":                  RecordLayout,
	"RecalculateStyles":       RecordRecalculateStyles,
	"Paint":                   RecordPaint,
	"ParseHTML":               RecordParseHTML,
	"TimerInstall":            RecordTimerInstall,
	"TimerRemove":             RecordTimerRemove,
	"TimerFire":               RecordTimerFire,
	"XHRReadyStateChange":     RecordXHRReadyStateChange,
	"XHRLoad":                 RecordXHRLoad,
	"EvaluateScript":          RecordEvaluateScript,
	"MarkTimeline":            RecordMarkTimeline,
	"FunctionCall":            RecordFunctionCall,
	"GCEvent":                 RecordGCEvent,
	"ScheduleResourceRequest": RecordScheduleResourceRequest,
	"ResourceSendRequest":     RecordResourceSendRequest,
	"ResourceReceiveResponse": RecordResourceReceiveResponse,
	"ResourceReceivedData":    RecordResourceReceivedData,
	"ResourceFinish":          RecordResourceFinish,
	"MarkDOMContent":          RecordMarkDOMContent,
	"MarkLoad":                RecordMarkLoad,
}

// ParseRecordType resolves a wire tag. Unknown tags map to RecordUnknown.
func ParseRecordType(tag string) RecordType {
	return recordTypeTags[tag]
}

// String returns the wire tag of the record type.
func (t RecordType) String() string {
	for tag, rt := range recordTypeTags {
		if rt == t {
			return tag
		}
	}
	return "Unknown"
}

func (t *RecordType) UnmarshalJSON(data []byte) error {
	var tag string
	if err := sonic.Unmarshal(data, &tag); err != nil {
		return err
	}
	*t = ParseRecordType(tag)
	return nil
}

func (t RecordType) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(t.String())
}

// RawEvent is one emitted instrumentation record as delivered by the capture
// layer. StartTime and EndTime are seconds; a nil StartTime marks the event as
// malformed.
type RawEvent struct {
	Type       RecordType   `json:"type"`
	StartTime  *float64     `json:"startTime"`
	EndTime    *float64     `json:"endTime,omitempty"`
	Data       EventData    `json:"data"`
	Children   []RawEvent   `json:"children,omitempty"`
	StackTrace []StackFrame `json:"stackTrace,omitempty"`
}

// EventData carries the type-specific payload fields.
type EventData struct {
	Identifier string `json:"identifier,omitempty"`
	URL        string `json:"url,omitempty"`
	TimerID    string `json:"timerId,omitempty"`
	ScriptName string `json:"scriptName,omitempty"`
	ScriptLine int    `json:"scriptLine,omitempty"`
	Message    string `json:"message,omitempty"`
	Type       string `json:"type,omitempty"` // dispatched DOM event name
}

type StackFrame struct {
	FunctionName string `json:"functionName"`
	URL          string `json:"url"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
}

// Span returns start and end seconds with the clamping policy applied: a
// missing end collapses to the start and an end before the start is raised to
// it.
func (e *RawEvent) Span() (start, end float64) {
	if e.StartTime == nil {
		return 0, 0
	}
	start = *e.StartTime
	end = start
	if e.EndTime != nil && *e.EndTime > start {
		end = *e.EndTime
	}
	return start, end
}

// ScriptLocation identifies the script a record ran.
type ScriptLocation struct {
	Name string `json:"scriptName"`
	Line int    `json:"scriptLine"`
}

func (l ScriptLocation) IsZero() bool {
	return l.Name == ""
}

// Seconds is a helper for building raw events in code.
func Seconds(v float64) *float64 {
	return &v
}
