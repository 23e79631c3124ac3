package timeline

import (
	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// PendingTables maps correlation keys to the opener node waiting for its
// continuations, one table per key space. Entries are never evicted on
// match so repeated continuations (several data chunks, interval timers) all
// resolve to the same opener; registering a key again overwrites it.
type PendingTables struct {
	tables map[model.KeySpace]map[string]NodeID
}

func NewPendingTables() *PendingTables {
	p := &PendingTables{}
	p.Clear()
	return p
}

// Register records id as the opener for key in space.
func (p *PendingTables) Register(space model.KeySpace, key string, id NodeID) {
	if space == model.KeyNone || key == "" {
		return
	}
	p.tables[space][key] = id
}

// Lookup finds the opener registered for key in space.
func (p *PendingTables) Lookup(space model.KeySpace, key string) (NodeID, bool) {
	if space == model.KeyNone || key == "" {
		return NoNode, false
	}
	id, ok := p.tables[space][key]
	return id, ok
}

// Len returns the number of entries in space.
func (p *PendingTables) Len(space model.KeySpace) int {
	return len(p.tables[space])
}

// Clear drops every entry of every table.
func (p *PendingTables) Clear() {
	p.tables = map[model.KeySpace]map[string]NodeID{
		model.KeyRequestID:  {},
		model.KeyRequestURL: {},
		model.KeyTimerID:    {},
	}
}

// Correlator resolves the logical parent of continuation records.
type Correlator struct {
	pending *PendingTables
}

func NewCorrelator(pending *PendingTables) *Correlator {
	return &Correlator{pending: pending}
}

// Resolve returns the previously ingested opener that ev continues. A miss is
// not an error: the caller keeps the nominal parent.
func (c *Correlator) Resolve(ev *model.RawEvent) (NodeID, bool) {
	space, key, ok := ev.ContinuationKey()
	if !ok {
		return NoNode, false
	}
	id, found := c.pending.Lookup(space, key)
	if !found {
		util.LogDebugf("Correlation miss: %s %s=%q", ev.Type, space, key)
		return NoNode, false
	}
	return id, true
}

// Register makes a built opener node available to later continuations.
func (c *Correlator) Register(ev *model.RawEvent, id NodeID) {
	if space, key, ok := ev.OpenerKey(); ok {
		c.pending.Register(space, key, id)
	}
}
