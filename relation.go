package warehouse

import (
	"reflect"
	"sync"
)

// relationHash identifies a relation kind the way TypeHash identifies a
// component column, but relations are never stored as archetype columns
// (spec.md §9 "Relations-as-components" explicitly rejects that), so
// identity here comes from the generic type parameter R itself rather than
// table.ElementType.
var (
	relationHashMu   sync.Mutex
	relationHashes   = map[reflect.Type]TypeHash{}
	nextRelationHash TypeHash = 1
)

func relationHashFor[R any]() TypeHash {
	t := reflect.TypeFor[R]()
	relationHashMu.Lock()
	defer relationHashMu.Unlock()
	if h, ok := relationHashes[t]; ok {
		return h
	}
	h := nextRelationHash
	nextRelationHash++
	relationHashes[t] = h
	return h
}

// edge is one outgoing relation of a given kind from one entity to
// another, carrying whatever payload value Relate was called with — the
// adjacency-list-of-(payload, other_entity) model spec.md describes for
// relations, rather than a bare edge list.
type edge struct {
	kind    TypeHash
	to      EntityID
	payload any
}

// Relation is one R-kind edge as seen from RelationsOutgoing/
// RelationsIncoming: the related entity plus the payload value Relate was
// given for that edge.
type Relation[R any] struct {
	Other   EntityID
	Payload R
}

// relationStore holds every relation edge in a World, indexed both by
// source (outgoing) and target (incoming), the way crate/src/entity.rs's
// relation adjacency maps are kept alongside the entity table rather than
// as archetype columns.
type relationStore struct {
	mu       sync.RWMutex
	outgoing map[uint64][]edge
	incoming map[uint64][]edge
}

func newRelationStore() *relationStore {
	return &relationStore{
		outgoing: make(map[uint64][]edge),
		incoming: make(map[uint64][]edge),
	}
}

func (s *relationStore) relate(kind TypeHash, from, to EntityID, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fk, tk := from.ToU64(), to.ToU64()
	for _, e := range s.outgoing[fk] {
		if e.kind == kind && e.to == to {
			return
		}
	}
	s.outgoing[fk] = append(s.outgoing[fk], edge{kind: kind, to: to, payload: payload})
	s.incoming[tk] = append(s.incoming[tk], edge{kind: kind, to: from, payload: payload})
}

func (s *relationStore) unrelate(kind TypeHash, from, to EntityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fk, tk := from.ToU64(), to.ToU64()
	s.outgoing[fk] = removeEdge(s.outgoing[fk], kind, to)
	s.incoming[tk] = removeEdge(s.incoming[tk], kind, from)
}

func removeEdge(edges []edge, kind TypeHash, target EntityID) []edge {
	out := edges[:0]
	for _, e := range edges {
		if e.kind == kind && e.to == target {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *relationStore) outgoingOf(kind TypeHash, from EntityID) []edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []edge
	for _, e := range s.outgoing[from.ToU64()] {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *relationStore) incomingOf(kind TypeHash, to EntityID) []edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []edge
	for _, e := range s.incoming[to.ToU64()] {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// dropEntity removes every edge touching e, outgoing or incoming — called
// from Despawn so a removed entity never lingers in another entity's
// adjacency list.
func (s *relationStore) dropEntity(e EntityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := e.ToU64()
	for _, out := range s.outgoing[key] {
		s.incoming[out.to.ToU64()] = removeEdge(s.incoming[out.to.ToU64()], out.kind, e)
	}
	for _, in := range s.incoming[key] {
		s.outgoing[in.to.ToU64()] = removeEdge(s.outgoing[in.to.ToU64()], in.kind, e)
	}
	delete(s.outgoing, key)
	delete(s.incoming, key)
}

// Relate records an R-kind edge from one entity to another, carrying
// payload as the edge's value. Duplicate edges of the same kind between
// the same pair are no-ops (the existing payload is kept).
func Relate[R any](w *World, from, to EntityID, payload R) error {
	if !w.Valid(from) {
		return InvalidEntityError{Entity: from}
	}
	if !w.Valid(to) {
		return InvalidEntityError{Entity: to}
	}
	w.relations.relate(relationHashFor[R](), from, to, payload)
	return nil
}

// Unrelate removes an R-kind edge between two entities, if present.
func Unrelate[R any](w *World, from, to EntityID) error {
	w.relations.unrelate(relationHashFor[R](), from, to)
	return nil
}

func edgesToRelations[R any](edges []edge) []Relation[R] {
	if len(edges) == 0 {
		return nil
	}
	out := make([]Relation[R], len(edges))
	for i, e := range edges {
		payload, _ := e.payload.(R)
		out[i] = Relation[R]{Other: e.to, Payload: payload}
	}
	return out
}

// RelationsOutgoing returns every R-kind edge `from` carries, each paired
// with the payload Relate stored for it.
func RelationsOutgoing[R any](w *World, from EntityID) []Relation[R] {
	return edgesToRelations[R](w.relations.outgoingOf(relationHashFor[R](), from))
}

// RelationsIncoming returns every R-kind edge pointing at `to`, each
// paired with the payload Relate stored for it.
func RelationsIncoming[R any](w *World, to EntityID) []Relation[R] {
	return edgesToRelations[R](w.relations.incomingOf(relationHashFor[R](), to))
}

// TraverseOutgoing walks the R-relation graph depth-first from root,
// calling visit once per newly discovered entity (a visited-set guards
// against cycles), per 22_traverse_relations.rs's traversal shape.
func TraverseOutgoing[R any](w *World, root EntityID, visit func(EntityID) bool) {
	kind := relationHashFor[R]()
	visited := map[uint64]struct{}{root.ToU64(): {}}
	stack := []EntityID{root}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		for _, e := range w.relations.outgoingOf(kind, cur) {
			key := e.to.ToU64()
			if _, ok := visited[key]; ok {
				continue
			}
			visited[key] = struct{}{}
			if !visit(e.to) {
				return
			}
			stack = append(stack, e.to)
		}
	}
}
