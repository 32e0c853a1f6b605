// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package buffer implements the time-indexed transform graph: the
// directed forest of named coordinate frames, per-edge pose history,
// interpolation, and the observer notification bus.
//
// # Ownership Model
//
// The Graph owns every Edge and every History. Callers never retain a
// pointer into graph-owned state across a call boundary; lookups copy
// the resulting Pose out.
//
// # Thread Safety
//
// Graph is safe for concurrent use. A single sync.RWMutex guards all
// structural and history mutation; Update takes the writer lock,
// lookups and Visualize take the reader lock. Observers run while the
// writer lock is held and must not call back into the Graph.
package buffer

import "errors"

var (
	// ErrAttemptedLookupInPast is returned when a query timestamp
	// precedes every sample on some edge along the path.
	ErrAttemptedLookupInPast = errors.New("buffer: attempted lookup in past")

	// ErrAttemptedLookupInFuture is returned when a query timestamp
	// follows every sample of some dynamic edge along the path.
	ErrAttemptedLookupInFuture = errors.New("buffer: attempted lookup in future")

	// ErrCouldNotFindTransform covers unknown frames, disconnected
	// frames, and dynamic edges with fewer than two samples.
	ErrCouldNotFindTransform = errors.New("buffer: could not find transform")

	// ErrInvalidGraph is returned when a proposed update would violate
	// the tree-shape or acyclic invariants.
	ErrInvalidGraph = errors.New("buffer: invalid graph")

	// ErrOutOfOrder is returned by History.Append when the new sample's
	// timestamp is not strictly greater than the last stored sample.
	ErrOutOfOrder = errors.New("buffer: out of order sample")

	// ErrLoader is returned by external importers (URDF-style file
	// loaders) that plug into the buffer as observers/seeders.
	ErrLoader = errors.New("buffer: loader error")
)
