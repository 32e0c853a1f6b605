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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 9: interpolation at knots equals the stored sample.
func TestInterpolateAtKnot(t *testing.T) {
	h := NewHistory(Dynamic, DefaultMaxHistory)
	require.NoError(t, h.Append(StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{0, 0, 0}, Rotation: IdentityQuat}}))
	require.NoError(t, h.Append(StampedPose{Stamp: 10, Pose: Pose{Translation: Vec3{1, 0, 0}, Rotation: IdentityQuat}}))

	p, err := h.InterpolateAt(10)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Translation.X, eps)
}

// Property 10: interpolation midpoint.
func TestInterpolateMidpoint(t *testing.T) {
	h := NewHistory(Dynamic, DefaultMaxHistory)
	require.NoError(t, h.Append(StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{0, 0, 0}, Rotation: IdentityQuat}}))
	require.NoError(t, h.Append(StampedPose{Stamp: 10, Pose: Pose{Translation: Vec3{2, 0, 0}, Rotation: IdentityQuat}}))

	p, err := h.InterpolateAt(5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Translation.X, eps)
}

func TestStaticHistoryIgnoresTime(t *testing.T) {
	h := NewHistory(Static, DefaultMaxHistory)
	require.NoError(t, h.Append(StampedPose{Stamp: 5, Pose: Pose{Translation: Vec3{9, 9, 9}, Rotation: IdentityQuat}}))

	p, err := h.InterpolateAt(0)
	require.NoError(t, err)
	assert.Equal(t, Vec3{9, 9, 9}, p.Translation)
}

func TestDynamicHistoryRequiresTwoSamples(t *testing.T) {
	h := NewHistory(Dynamic, DefaultMaxHistory)
	require.NoError(t, h.Append(StampedPose{Stamp: 0, Pose: IdentityPose}))
	_, err := h.InterpolateAt(0)
	assert.ErrorIs(t, err, ErrCouldNotFindTransform)
}
