package timeline

import (
	"github.com/penwyp/go-trace-monitor/internal/core/model"
)

// NodeID addresses a node in a Tree arena.
type NodeID int

const (
	// RootID is the synthetic root owning all top-level records.
	RootID NodeID = 0
	// NoNode marks a missing parent.
	NoNode NodeID = -1
)

// Node is one record of the trace tree. Parent is a non-owning back
// reference used only for upward propagation; ownership flows through
// Children.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID

	Type     model.RecordType
	Title    string
	Category model.Category
	Data     model.EventData
	Script   model.ScriptLocation
	Stack    []model.StackFrame

	StartTime        float64
	EndTime          float64
	SelfTime         float64
	LastChildEndTime float64 // >= EndTime, extended by late async children

	AggregatedStats model.CategoryStats
	CPUTime         float64

	// ConnectedToOldRecord is set when the node was reparented under a
	// previously ingested record through a correlation key.
	ConnectedToOldRecord bool
	Collapsed            bool

	// Recomputed by every visibility pass.
	VisibleChildrenCount   int
	InvisibleChildrenCount int
	Depth                  int
}

// Duration is the node's extent including late children.
func (n *Node) Duration() float64 {
	return n.LastChildEndTime - n.StartTime
}

// HasChildren reports whether the node owns any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Tree is an arena of nodes addressed by NodeID.
type Tree struct {
	nodes []*Node

	// Root counters.
	AllRecordsCount     int
	VisibleRecordsCount int
}

// NewTree creates a tree holding only the synthetic root.
func NewTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, &Node{ID: RootID, Parent: NoNode, Title: "root"})
	return t
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node {
	return t.nodes[RootID]
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) newNode(parent NodeID) *Node {
	n := &Node{ID: NodeID(len(t.nodes)), Parent: NoNode}
	t.nodes = append(t.nodes, n)
	t.attach(n.ID, parent)
	return n
}

func (t *Tree) attach(id, parent NodeID) {
	n := t.nodes[id]
	p := t.nodes[parent]
	n.Parent = parent
	p.Children = append(p.Children, id)
}

// detach removes id from its parent's children, leaving it unowned.
func (t *Tree) detach(id NodeID) {
	n := t.nodes[id]
	if n.Parent == NoNode {
		return
	}
	p := t.nodes[n.Parent]
	for i, c := range p.Children {
		if c == id {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = NoNode
}

// Ancestors returns the chain of non-root ancestors of id, nearest first.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var chain []NodeID
	for p := t.nodes[id].Parent; p != NoNode && p != RootID; p = t.nodes[p].Parent {
		chain = append(chain, p)
	}
	return chain
}

// Walk visits every non-root node in document order. Returning false from fn
// skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(id NodeID)
	visit = func(id NodeID) {
		for _, c := range t.nodes[id].Children {
			if fn(t.nodes[c]) {
				visit(c)
			}
		}
	}
	visit(RootID)
}
