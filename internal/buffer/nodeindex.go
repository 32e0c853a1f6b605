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

// NodeID is a dense integer identifier for a frame name. Ids are never
// recycled, even across node removal during rollback.
type NodeID int

// nodeIndex is a bijection between frame names and dense integer ids.
// The hot lookup/composition paths index by NodeID so they never hash
// strings.
type nodeIndex struct {
	byName map[string]NodeID
	byID   map[NodeID]string
	next   NodeID
}

func newNodeIndex() *nodeIndex {
	return &nodeIndex{byName: make(map[string]NodeID), byID: make(map[NodeID]string)}
}

// index returns the existing id for name, allocating a new one if name
// has not been seen before.
func (n *nodeIndex) index(name string) NodeID {
	if id, ok := n.byName[name]; ok {
		return id
	}
	id := n.next
	n.next++
	n.byName[name] = id
	n.byID[id] = name
	return id
}

// contains is a pure read: does name already have an id.
func (n *nodeIndex) contains(name string) (NodeID, bool) {
	id, ok := n.byName[name]
	return id, ok
}

func (n *nodeIndex) name(id NodeID) string { return n.byID[id] }

// remove deletes a newly-allocated id/name pair. Used only for rollback
// of nodes created solely by a failing update; it does not reclaim the
// id for reuse.
func (n *nodeIndex) remove(id NodeID) {
	name, ok := n.byID[id]
	if !ok {
		return
	}
	delete(n.byID, id)
	delete(n.byName, name)
}
