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

// pathCacheKey identifies a memoized find_path result.
type pathCacheKey struct {
	from NodeID
	to   NodeID
}

// pathCache memoizes find_path results between repeatedly-queried
// frame pairs. It never changes what lookup_at/lookup_latest return;
// it only avoids re-walking the parent chains for a pair that was
// already resolved since the last structural change. A successful
// Update that inserts a new edge invalidates the whole cache; appending
// a sample to an existing edge leaves it intact, since that changes no
// path.
type pathCache struct {
	entries map[pathCacheKey][]NodeID
}

func newPathCache() *pathCache {
	return &pathCache{entries: make(map[pathCacheKey][]NodeID)}
}

func (c *pathCache) get(from, to NodeID) ([]NodeID, bool) {
	p, ok := c.entries[pathCacheKey{from, to}]
	return p, ok
}

func (c *pathCache) put(from, to NodeID, path []NodeID) {
	c.entries[pathCacheKey{from, to}] = path
}

func (c *pathCache) invalidate() {
	if len(c.entries) == 0 {
		return
	}
	c.entries = make(map[pathCacheKey][]NodeID)
}
