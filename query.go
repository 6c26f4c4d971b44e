// Package warehouse provides query mechanisms for component-based entity systems
package warehouse

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// Query represents a composable, runtime-typed query interface for
// filtering archetypes by component set. This is the DynamicQuery engine
// spec.md's query section calls for: component identity is resolved by
// TypeHash at call time rather than at compile time (see fetch.go for the
// compile-time Fetch[T] counterpart built on top of this AST).
type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

// QueryNode represents a node in the query tree that can be evaluated
// against one archetype.
type QueryNode interface {
	Evaluate(archetype *archetype, world *World) bool
}

// QueryOperation defines the logical operations for query nodes.
type QueryOperation int

const (
	OpAnd QueryOperation = iota // Logical AND operation
	OpOr                        // Logical OR operation
	OpNot                       // Logical NOT operation
)

// compositeNode implements a compound query with child nodes.
type compositeNode struct {
	op         QueryOperation
	children   []QueryNode
	components []Component
}

// leafNode implements a simple query with no child nodes.
type leafNode struct {
	components []Component
}

// query implements the Query interface.
type query struct {
	root QueryNode
}

// newQuery creates a new empty query.
func newQuery() Query {
	return &query{}
}

func newCompositeNode(op QueryOperation, components []Component) *compositeNode {
	return &compositeNode{
		op:         op,
		children:   make([]QueryNode, 0),
		components: components,
	}
}

func newLeafNode(components []Component) *leafNode {
	return &leafNode{components: components}
}

func maskFor(world *World, comps []Component) mask.Mask {
	var m mask.Mask
	for _, comp := range comps {
		bit := world.rowIndexFor(comp)
		m.Mark(bit)
	}
	return m
}

// Evaluate implements the QueryNode interface for composite nodes.
func (n *compositeNode) Evaluate(archetype *archetype, world *World) bool {
	nodeMask := maskFor(world, n.components)
	archeMask := archetype.Mask()

	switch n.op {
	case OpAnd:
		if !archeMask.ContainsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(archetype, world) {
				return false
			}
		}
		return true
	case OpOr:
		if archeMask.ContainsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(archetype, world) {
				return true
			}
		}
		return false
	case OpNot:
		if len(n.children) == 0 {
			return archeMask.ContainsNone(nodeMask)
		}
		if len(n.components) > 0 && !archeMask.ContainsNone(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if child.Evaluate(archetype, world) {
				return false
			}
		}
		return true
	}
	return false
}

// Evaluate implements the QueryNode interface for leaf nodes.
func (n *leafNode) Evaluate(archetype *archetype, world *World) bool {
	nodeMask := maskFor(world, n.components)
	return archetype.Mask().ContainsAll(nodeMask)
}

// And creates a new AND operation node with the provided items.
func (q *query) And(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpAnd, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// Or creates a new OR operation node with the provided items.
func (q *query) Or(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpOr, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// Not creates a new NOT operation node with the provided items.
func (q *query) Not(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpNot, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) validateQueryItems(items ...interface{}) error {
	for _, item := range items {
		switch item.(type) {
		case Component, []Component, QueryNode, Query:
			continue
		default:
			return fmt.Errorf("invalid query item type: %T. Only Component, []Component, or QueryNode are allowed", item)
		}
	}
	return nil
}

func (q *query) processItems(items ...interface{}) ([]Component, []QueryNode) {
	if err := q.validateQueryItems(items...); err != nil {
		panic(bark.AddTrace(err))
	}
	components := make([]Component, 0)
	children := make([]QueryNode, 0)
	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}
	return components, children
}

// Evaluate implements the QueryNode interface for the query type.
func (q *query) Evaluate(archetype *archetype, world *World) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(archetype, world)
}
