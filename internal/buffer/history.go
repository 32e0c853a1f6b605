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

import "sort"

// DefaultMaxHistory is the default per-edge sample retention cap.
const DefaultMaxHistory = 1000

// History is the bounded, time-ordered sample sequence for a single
// directed edge. It is owned by its Edge; readers borrow it only for
// the duration of a single interpolation call.
type History struct {
	kind    Kind
	maxLen  int
	samples []StampedPose
}

// NewHistory constructs an empty History of the given kind with the
// given retention cap. A non-positive cap falls back to
// DefaultMaxHistory.
func NewHistory(kind Kind, maxLen int) *History {
	if maxLen <= 0 {
		maxLen = DefaultMaxHistory
	}
	return &History{kind: kind, maxLen: maxLen}
}

// Kind reports whether this history is Static or Dynamic.
func (h *History) Kind() Kind { return h.kind }

// Len reports the current sample count.
func (h *History) Len() int { return len(h.samples) }

// Latest returns the most recently appended sample. The second return
// value is false if the history is empty.
func (h *History) Latest() (StampedPose, bool) {
	if len(h.samples) == 0 {
		return StampedPose{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Append inserts a new sample. It must be strictly greater in
// timestamp than the last stored sample; otherwise ErrOutOfOrder is
// returned and the history is unchanged. On overflow the oldest entry
// is evicted.
func (h *History) Append(sp StampedPose) error {
	if n := len(h.samples); n > 0 && sp.Stamp <= h.samples[n-1].Stamp {
		return ErrOutOfOrder
	}
	h.samples = append(h.samples, sp)
	if len(h.samples) > h.maxLen {
		h.samples = h.samples[len(h.samples)-h.maxLen:]
	}
	return nil
}

// InterpolateAt resolves the pose for timestamp t.
//
// Static histories return the latest pose regardless of t, erroring
// only when empty. Dynamic histories require at least two samples and
// binary-search for the bracketing pair; an exact hit returns that
// sample verbatim, an insertion point of 0 is ErrAttemptedLookupInPast,
// an insertion point at or past the end is
// ErrAttemptedLookupInFuture, and otherwise the bracketing samples are
// lerp/slerp-interpolated.
func (h *History) InterpolateAt(t Timestamp) (Pose, error) {
	if h.kind == Static {
		latest, ok := h.Latest()
		if !ok {
			return Pose{}, ErrCouldNotFindTransform
		}
		return latest.Pose, nil
	}
	if len(h.samples) < 2 {
		return Pose{}, ErrCouldNotFindTransform
	}
	idx := sort.Search(len(h.samples), func(i int) bool { return h.samples[i].Stamp >= t })
	if idx < len(h.samples) && h.samples[idx].Stamp == t {
		return h.samples[idx].Pose, nil
	}
	if idx == 0 {
		return Pose{}, ErrAttemptedLookupInPast
	}
	if idx >= len(h.samples) {
		return Pose{}, ErrAttemptedLookupInFuture
	}
	p0, p1 := h.samples[idx-1], h.samples[idx]
	w := float64(t-p0.Stamp) / float64(p1.Stamp-p0.Stamp)
	return InterpolatePose(p0.Pose, p1.Pose, w), nil
}
