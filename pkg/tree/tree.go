// Package tree holds the search tree grown by the planner.
//
// Nodes live in an arena and are addressed by stable integer IDs. A node owns
// an ordered list of child IDs; nodes are only ever appended, never removed
// or mutated, so an ID handed out once stays valid for the tree's lifetime.
package tree

import (
	"iter"

	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

// ErrInvalidNode is returned when an operation references a node that does
// not exist or receives an empty node set.
var ErrInvalidNode = errors.New("invalid node")

// NodeID addresses a node in a Tree.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Root is the ID of the node created by New.
const Root NodeID = 0

// Node is one configuration reached during the search.
type Node struct {
	Value    space.Point `json:"value"`
	Parent   NodeID      `json:"parent"`
	Children []NodeID    `json:"children,omitempty"`
}

// Edge connects a parent to one of its children.
type Edge struct {
	Parent NodeID
	Child  NodeID
	From   space.Point
	To     space.Point
}

// Tree is an append-only rooted tree of configurations.
type Tree struct {
	nodes []Node
}

// New creates a tree whose root holds the given value.
func New(root space.Point) *Tree {
	return &Tree{
		nodes: []Node{{Value: root.Clone(), Parent: NoNode}},
	}
}

func (t *Tree) valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes)
}

// Append adds value as the last child of parent and returns the new node's ID.
func (t *Tree) Append(parent NodeID, value space.Point) (NodeID, error) {
	if !t.valid(parent) {
		return NoNode, errors.Wrapf(ErrInvalidNode, "append to node %d", parent)
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{Value: value.Clone(), Parent: parent})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id, nil
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Value returns the configuration held by id.
func (t *Tree) Value(id NodeID) (space.Point, error) {
	if !t.valid(id) {
		return nil, errors.Wrapf(ErrInvalidNode, "node %d", id)
	}
	return t.nodes[id].Value, nil
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) (NodeID, error) {
	if !t.valid(id) {
		return NoNode, errors.Wrapf(ErrInvalidNode, "node %d", id)
	}
	return t.nodes[id].Parent, nil
}

// Children returns the children of id in insertion order.
func (t *Tree) Children(id NodeID) ([]NodeID, error) {
	if !t.valid(id) {
		return nil, errors.Wrapf(ErrInvalidNode, "node %d", id)
	}
	return append([]NodeID(nil), t.nodes[id].Children...), nil
}

// Values returns every configuration in insertion order.
func (t *Tree) Values() []space.Point {
	values := make([]space.Point, len(t.nodes))
	for i := range t.nodes {
		values[i] = t.nodes[i].Value
	}
	return values
}

// Nodes yields node IDs in pre-order starting at the root. The sequence can
// be ranged over any number of times and never mutates the tree.
func (t *Tree) Nodes() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if t.Len() == 0 {
			return
		}
		stack := []NodeID{Root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(id) {
				return
			}
			children := t.nodes[id].Children
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// Edges yields every parent-child edge in pre-order.
func (t *Tree) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for id := range t.Nodes() {
			n := &t.nodes[id]
			if n.Parent == NoNode {
				continue
			}
			e := Edge{
				Parent: n.Parent,
				Child:  id,
				From:   t.nodes[n.Parent].Value,
				To:     n.Value,
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Path returns the configurations from the root to id, inclusive.
func (t *Tree) Path(id NodeID) ([]space.Point, error) {
	if !t.valid(id) {
		return nil, errors.Wrapf(ErrInvalidNode, "path to node %d", id)
	}
	var path []space.Point
	for cur := id; cur != NoNode; cur = t.nodes[cur].Parent {
		path = append(path, t.nodes[cur].Value)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
