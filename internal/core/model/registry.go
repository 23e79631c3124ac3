package model

// RecordStyle is the registry entry of a record type.
type RecordStyle struct {
	Title    string
	Category Category
}

var recordStyles = map[RecordType]RecordStyle{
	RecordEventDispatch:           {Title: "Event", Category: CategoryScripting},
	RecordLayout:                  {Title: "Layout", Category: CategoryRendering},
	RecordRecalculateStyles:       {Title: "Recalculate Style", Category: CategoryRendering},
	RecordPaint:                   {Title: "Paint", Category: CategoryRendering},
	RecordParseHTML:               {Title: "Parse", Category: CategoryLoading},
	RecordTimerInstall:            {Title: "Install Timer", Category: CategoryScripting},
	RecordTimerRemove:             {Title: "Remove Timer", Category: CategoryScripting},
	RecordTimerFire:               {Title: "Timer Fired", Category: CategoryScripting},
	RecordXHRReadyStateChange:     {Title: "XHR Ready State Change", Category: CategoryScripting},
	RecordXHRLoad:                 {Title: "XHR Load", Category: CategoryScripting},
	RecordEvaluateScript:          {Title: "Evaluate Script", Category: CategoryScripting},
	RecordMarkTimeline:            {Title: "Mark", Category: CategoryScripting},
	RecordFunctionCall:            {Title: "Function Call", Category: CategoryScripting},
	RecordGCEvent:                 {Title: "GC Event", Category: CategoryScripting},
	RecordScheduleResourceRequest: {Title: "Schedule Request", Category: CategoryLoading},
	RecordResourceSendRequest:     {Title: "Send Request", Category: CategoryLoading},
	RecordResourceReceiveResponse: {Title: "Receive Response", Category: CategoryLoading},
	RecordResourceReceivedData:    {Title: "Receive Data", Category: CategoryLoading},
	RecordResourceFinish:          {Title: "Finish Loading", Category: CategoryLoading},
	RecordMarkDOMContent:          {Title: "DOMContent event", Category: CategoryScripting},
	RecordMarkLoad:                {Title: "Load event", Category: CategoryLoading},
}

// Style looks up the registry entry for t.
func Style(t RecordType) (RecordStyle, bool) {
	s, ok := recordStyles[t]
	return s, ok
}

// KeySpace names a correlation table.
type KeySpace int

const (
	KeyNone KeySpace = iota
	KeyRequestID
	KeyRequestURL
	KeyTimerID
)

func (k KeySpace) String() string {
	switch k {
	case KeyRequestID:
		return "request-id"
	case KeyRequestURL:
		return "request-url"
	case KeyTimerID:
		return "timer-id"
	default:
		return "none"
	}
}

// IsMarker reports whether records of type t are zero-duration global
// dividers rather than bars.
func (t RecordType) IsMarker() bool {
	return t == RecordMarkDOMContent || t == RecordMarkLoad
}

// ContinuationKey returns the table a continuation record resolves its
// logical parent from. ok is false for non-continuation types.
func (e *RawEvent) ContinuationKey() (space KeySpace, key string, ok bool) {
	switch e.Type {
	case RecordResourceReceiveResponse, RecordResourceReceivedData, RecordResourceFinish:
		return KeyRequestID, e.Data.Identifier, true
	case RecordTimerFire:
		return KeyTimerID, e.Data.TimerID, true
	case RecordResourceSendRequest:
		return KeyRequestURL, e.Data.URL, true
	}
	return KeyNone, "", false
}

// OpenerKey returns the table an opener record registers into once built.
func (e *RawEvent) OpenerKey() (space KeySpace, key string, ok bool) {
	switch e.Type {
	case RecordResourceSendRequest:
		return KeyRequestID, e.Data.Identifier, true
	case RecordScheduleResourceRequest:
		return KeyRequestURL, e.Data.URL, true
	case RecordTimerInstall:
		return KeyTimerID, e.Data.TimerID, true
	}
	return KeyNone, "", false
}
