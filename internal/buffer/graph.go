// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package buffer

import (
	"fmt"
	"sync"
)

// edge is a single directed edge owning its pose History.
type edge struct {
	from, to NodeID
	history  *History
}

// GraphOptions configures a Graph at construction time.
type GraphOptions struct {
	// MaxTransformHistory bounds per-edge sample retention. Zero
	// selects DefaultMaxHistory.
	MaxTransformHistory int
}

// GraphOption mutates GraphOptions.
type GraphOption func(*GraphOptions)

// WithMaxTransformHistory overrides the per-edge retention cap.
func WithMaxTransformHistory(n int) GraphOption {
	return func(o *GraphOptions) { o.MaxTransformHistory = n }
}

// Graph is the directed forest of coordinate frames. Edges carry
// pose histories; invariants are enforced on insertion with full
// rollback on violation. Graph is safe for concurrent use: Update
// takes the writer lock, lookups and Visualize take the reader lock.
type Graph struct {
	mu sync.RWMutex

	index    *nodeIndex
	parent   map[NodeID]NodeID // child -> parent
	children map[NodeID]map[NodeID]*edge
	edgeList []*edge // insertion order, for observer replay and visualization
	cache    *pathCache
	bus      *observerBus

	opts GraphOptions
}

// NewGraph constructs an empty Graph.
func NewGraph(opts ...GraphOption) *Graph {
	o := GraphOptions{MaxTransformHistory: DefaultMaxHistory}
	for _, fn := range opts {
		fn(&o)
	}
	return &Graph{
		index:    newNodeIndex(),
		parent:   make(map[NodeID]NodeID),
		children: make(map[NodeID]map[NodeID]*edge),
		cache:    newPathCache(),
		bus:      &observerBus{},
		opts:     o,
	}
}

// Update inserts or appends a stamped pose on the directed edge
// from->to. If the edge already exists, the sample is appended to its
// history (structure is untouched). Otherwise the edge (and any
// missing endpoint nodes) is provisionally created and checked against
// the tree/acyclic invariants; on violation the graph is rolled back to
// its pre-call state and ErrInvalidGraph is returned.
func (g *Graph) Update(from, to string, sp StampedPose, kind Kind) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, fromExisted := g.index.contains(from)
	_, toExisted := g.index.contains(to)
	fromID := g.index.index(from)
	toID := g.index.index(to)

	if e := g.edgeBetween(fromID, toID); e != nil {
		if err := e.history.Append(sp); err != nil {
			return err
		}
		g.bus.notify(UpdateEvent{From: from, To: to, StampedPose: sp, Kind: e.history.Kind()})
		return nil
	}

	rollback := func() {
		if !toExisted {
			g.index.remove(toID)
		}
		if !fromExisted {
			g.index.remove(fromID)
		}
	}

	if _, hasParent := g.parent[toID]; hasParent {
		rollback()
		return fmt.Errorf("%w: frame %q already has an incoming edge", ErrInvalidGraph, to)
	}
	if fromID == toID || g.sameComponent(fromID, toID) {
		rollback()
		return fmt.Errorf("%w: edge %q->%q would create a cycle", ErrInvalidGraph, from, to)
	}

	h := NewHistory(kind, g.opts.MaxTransformHistory)
	if err := h.Append(sp); err != nil {
		rollback()
		return err
	}
	e := &edge{from: fromID, to: toID, history: h}
	if g.children[fromID] == nil {
		g.children[fromID] = make(map[NodeID]*edge)
	}
	g.children[fromID][toID] = e
	g.parent[toID] = fromID
	g.edgeList = append(g.edgeList, e)
	g.cache.invalidate()

	g.bus.notify(UpdateEvent{From: from, To: to, StampedPose: sp, Kind: kind})
	return nil
}

func (g *Graph) edgeBetween(a, b NodeID) *edge {
	if m, ok := g.children[a]; ok {
		if e, ok := m[b]; ok {
			return e
		}
	}
	return nil
}

// sameComponent reports whether a and b are already connected via the
// existing (pre-insertion) tree structure, ignoring edge direction.
func (g *Graph) sameComponent(a, b NodeID) bool {
	ra, aHasEdges := g.root(a)
	rb, bHasEdges := g.root(b)
	if !aHasEdges || !bHasEdges {
		return false
	}
	return ra == rb
}

// root walks the parent chain to the topmost ancestor of id. The
// second return value is false if id has no parent and no children
// (i.e. is not part of any existing tree yet).
func (g *Graph) root(id NodeID) (NodeID, bool) {
	_, hasParent := g.parent[id]
	_, hasChildren := g.children[id]
	if !hasParent && !hasChildren {
		return id, false
	}
	cur := id
	for {
		p, ok := g.parent[cur]
		if !ok {
			return cur, true
		}
		cur = p
	}
}

// findPathIDs returns the ordered node-id chain connecting from to to via
// their lowest common ancestor, or false if they are not connected.
func (g *Graph) findPathIDs(from, to NodeID) ([]NodeID, bool) {
	pathFrom := []NodeID{from}
	cur := from
	for {
		p, ok := g.parent[cur]
		if !ok {
			break
		}
		cur = p
		pathFrom = append(pathFrom, cur)
	}

	idxInFrom := -1
	for i, n := range pathFrom {
		if n == to {
			idxInFrom = i
			break
		}
	}
	if idxInFrom >= 0 {
		return append([]NodeID(nil), pathFrom[:idxInFrom+1]...), true
	}

	pathTo := []NodeID{to}
	curTo := to
	lcaIdx := -1
	for {
		for i, n := range pathFrom {
			if n == curTo {
				lcaIdx = i
				break
			}
		}
		if lcaIdx >= 0 {
			break
		}
		p, ok := g.parent[curTo]
		if !ok {
			break
		}
		curTo = p
		pathTo = append(pathTo, curTo)
	}
	if lcaIdx < 0 {
		return nil, false
	}
	trimmed := append([]NodeID(nil), pathFrom[:lcaIdx+1]...)
	rev := pathTo[:len(pathTo)-1]
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return append(trimmed, rev...), true
}

// FindPath is the string-frame-name counterpart of findPathIDs. It
// returns ErrCouldNotFindTransform if either frame is unknown or they
// are disconnected.
func (g *Graph) FindPath(from, to string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.findPathNames(from, to)
}

func (g *Graph) findPathNames(from, to string) ([]string, error) {
	fromID, ok := g.index.contains(from)
	if !ok {
		return nil, fmt.Errorf("%w: unknown frame %q", ErrCouldNotFindTransform, from)
	}
	toID, ok := g.index.contains(to)
	if !ok {
		return nil, fmt.Errorf("%w: unknown frame %q", ErrCouldNotFindTransform, to)
	}
	ids, cached := g.cache.get(fromID, toID)
	if !cached {
		var found bool
		ids, found = g.findPathIDs(fromID, toID)
		if !found {
			return nil, fmt.Errorf("%w: no path between %q and %q", ErrCouldNotFindTransform, from, to)
		}
		g.cache.put(fromID, toID, ids)
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.index.name(id)
	}
	return names, nil
}

// selectPose resolves a single edge's pose for either "latest" or a
// specific timestamp.
func selectPose(h *History, at *Timestamp) (Pose, error) {
	if at == nil {
		sp, ok := h.Latest()
		if !ok {
			return Pose{}, ErrCouldNotFindTransform
		}
		return sp.Pose, nil
	}
	return h.InterpolateAt(*at)
}

func (g *Graph) lookup(from, to string, at *Timestamp) (Pose, error) {
	fromID, ok := g.index.contains(from)
	if !ok {
		return Pose{}, fmt.Errorf("%w: unknown frame %q", ErrCouldNotFindTransform, from)
	}
	toID, ok := g.index.contains(to)
	if !ok {
		return Pose{}, fmt.Errorf("%w: unknown frame %q", ErrCouldNotFindTransform, to)
	}

	ids, cached := g.cache.get(fromID, toID)
	if !cached {
		var found bool
		ids, found = g.findPathIDs(fromID, toID)
		if !found {
			return Pose{}, fmt.Errorf("%w: no path between %q and %q", ErrCouldNotFindTransform, from, to)
		}
		g.cache.put(fromID, toID, ids)
	}

	acc := IdentityPose
	for i := 0; i+1 < len(ids); i++ {
		a, b := ids[i], ids[i+1]
		if e := g.edgeBetween(a, b); e != nil {
			p, err := selectPose(e.history, at)
			if err != nil {
				return Pose{}, fmt.Errorf("%s->%s: %w", g.index.name(a), g.index.name(b), err)
			}
			acc = acc.Compose(p)
			continue
		}
		e := g.edgeBetween(b, a)
		if e == nil {
			return Pose{}, fmt.Errorf("%w: broken edge between %q and %q", ErrCouldNotFindTransform, g.index.name(a), g.index.name(b))
		}
		p, err := selectPose(e.history, at)
		if err != nil {
			return Pose{}, fmt.Errorf("%s->%s: %w", g.index.name(b), g.index.name(a), err)
		}
		acc = acc.Compose(p.Inverse())
	}
	return acc, nil
}

// LookupLatest returns the composed transform from->to using each
// edge's most recently appended sample. The returned stamp is always
// LatestSentinel (0): this implementation resolves the Open Question
// in the source design notes in favor of the sentinel value, since
// that is the same convention TransformRequest.time already uses for
// "latest", making the result directly reusable as a subsequent query.
func (g *Graph) LookupLatest(from, to string) (StampedPose, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, err := g.lookup(from, to, nil)
	if err != nil {
		return StampedPose{}, err
	}
	return StampedPose{Stamp: LatestSentinel, Pose: p}, nil
}

// LookupAt returns the composed transform from->to at time t,
// interpolating along dynamic edges as needed.
func (g *Graph) LookupAt(from, to string, t Timestamp) (StampedPose, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, err := g.lookup(from, to, &t)
	if err != nil {
		return StampedPose{}, err
	}
	return StampedPose{Stamp: t, Pose: p}, nil
}

// RegisterObserver stores obs and, before returning, replays the
// latest sample of every existing edge to it in insertion order.
func (g *Graph) RegisterObserver(obs Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bus.register(obs)
	for _, e := range g.edgeList {
		latest, ok := e.history.Latest()
		if !ok {
			continue
		}
		obs.OnUpdate(UpdateEvent{
			From:        g.index.name(e.from),
			To:          g.index.name(e.to),
			StampedPose: latest,
			Kind:        e.history.Kind(),
		})
	}
}
