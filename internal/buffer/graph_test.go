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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-6

func approxPose(t *testing.T, want, got Pose) {
	t.Helper()
	assert.InDelta(t, want.Translation.X, got.Translation.X, eps)
	assert.InDelta(t, want.Translation.Y, got.Translation.Y, eps)
	assert.InDelta(t, want.Translation.Z, got.Translation.Z, eps)
	assert.InDelta(t, want.Rotation.X, got.Rotation.X, eps)
	assert.InDelta(t, want.Rotation.Y, got.Rotation.Y, eps)
	assert.InDelta(t, want.Rotation.Z, got.Rotation.Z, eps)
	assert.InDelta(t, want.Rotation.W, got.Rotation.W, eps)
}

// Scenario A: Static-only chain.
func TestScenarioA_StaticOnlyChain(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("world", "robot", StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{0, 0, 1}, Rotation: IdentityQuat}}, Static))

	sp, err := g.LookupAt("world", "robot", 0)
	require.NoError(t, err)
	approxPose(t, Pose{Translation: Vec3{0, 0, 1}, Rotation: IdentityQuat}, sp.Pose)
}

// Scenario B: Composed static.
func TestScenarioB_ComposedStatic(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("world", "robot", StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{0, 0, 1}, Rotation: IdentityQuat}}, Static))
	require.NoError(t, g.Update("robot", "tool", StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{0.5, 0, 0}, Rotation: IdentityQuat}}, Static))

	sp, err := g.LookupAt("world", "tool", 0)
	require.NoError(t, err)
	approxPose(t, Pose{Translation: Vec3{0.5, 0, 1}, Rotation: IdentityQuat}, sp.Pose)
}

// Scenario C: Interpolation on a dynamic edge.
func TestScenarioC_Interpolation(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("a", "b", StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{0, 0, 0}, Rotation: IdentityQuat}}, Dynamic))
	require.NoError(t, g.Update("a", "b", StampedPose{Stamp: 1_000_000_000, Pose: Pose{Translation: Vec3{2, 0, 0}, Rotation: IdentityQuat}}, Dynamic))

	sp, err := g.LookupAt("a", "b", 500_000_000)
	require.NoError(t, err)
	approxPose(t, Pose{Translation: Vec3{1, 0, 0}, Rotation: IdentityQuat}, sp.Pose)
}

// Scenario D: Out-of-range dynamic.
func TestScenarioD_OutOfRange(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("a", "b", StampedPose{Stamp: 0, Pose: IdentityPose}, Dynamic))
	require.NoError(t, g.Update("a", "b", StampedPose{Stamp: 1_000_000_000, Pose: IdentityPose}, Dynamic))

	_, err := g.LookupAt("a", "b", -100_000_000)
	assert.ErrorIs(t, err, ErrAttemptedLookupInPast)

	_, err = g.LookupAt("a", "b", 1_100_000_000)
	assert.ErrorIs(t, err, ErrAttemptedLookupInFuture)
}

// Scenario E: Cycle rejection.
func TestScenarioE_CycleRejection(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static))
	require.NoError(t, g.Update("B", "C", StampedPose{Stamp: 0, Pose: IdentityPose}, Static))

	err := g.Update("C", "A", StampedPose{Stamp: 0, Pose: IdentityPose}, Static)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGraph)

	path, err := g.FindPath("A", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, path)
}

// Scenario F: Second-parent rejection.
func TestScenarioF_SecondParentRejection(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static))

	err := g.Update("C", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGraph)

	_, err = g.FindPath("A", "C")
	assert.ErrorIs(t, err, ErrCouldNotFindTransform, "C must not have been left in the graph")
}

// Scenario G: Multi-segment time travel across a 5-link chain.
func TestScenarioG_MultiSegmentTimeTravel(t *testing.T) {
	g := NewGraph()
	chain := []string{"a", "b", "c", "d", "e", "f"}
	for i := 0; i+1 < len(chain); i++ {
		from, to := chain[i], chain[i+1]
		step := Vec3{float64(i + 1), 0, 0}
		require.NoError(t, g.Update(from, to, StampedPose{Stamp: 0, Pose: IdentityPose}, Dynamic))
		require.NoError(t, g.Update(from, to, StampedPose{Stamp: 1_000_000_000, Pose: Pose{Translation: step, Rotation: IdentityQuat}}, Dynamic))
	}

	sp, err := g.LookupAt("a", "f", 500_000_000)
	require.NoError(t, err)

	want := Vec3{0.5, 0, 0}
	for i := 1; i < 5; i++ {
		want.X += float64(i+1) * 0.5
	}
	approxPose(t, Pose{Translation: want, Rotation: IdentityQuat}, sp.Pose)
}

// Property 1 & 2: insertion monotonicity and history cap.
func TestHistoryCapAndMonotonicity(t *testing.T) {
	h := NewHistory(Dynamic, 3)
	for i := Timestamp(0); i < 5; i++ {
		require.NoError(t, h.Append(StampedPose{Stamp: i, Pose: IdentityPose}))
	}
	assert.Equal(t, 3, h.Len())
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, Timestamp(4), latest.Stamp)

	err := h.Append(StampedPose{Stamp: 4, Pose: IdentityPose})
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

// Property 3: tree invariant enforcement.
func TestTreeInvariant(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static))
	err := g.Update("X", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static)
	assert.ErrorIs(t, err, ErrInvalidGraph)
}

// Property 4: rollback fidelity, checked via FindPath visibility.
func TestRollbackFidelity(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static))
	before, err := g.FindPath("A", "B")
	require.NoError(t, err)

	err = g.Update("C", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static)
	require.True(t, errors.Is(err, ErrInvalidGraph))

	after, err := g.FindPath("A", "B")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = g.FindPath("A", "C")
	assert.ErrorIs(t, err, ErrCouldNotFindTransform)
}

// Property 6: composition identity for a trivial path.
func TestCompositionIdentity(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("world", "robot", StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{1, 2, 3}, Rotation: IdentityQuat}}, Static))

	sp, err := g.LookupAt("world", "world", 0)
	require.NoError(t, err)
	approxPose(t, IdentityPose, sp.Pose)
}

// Property 7: inverse law.
func TestInverseLaw(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{1, 2, 3}, Rotation: NewQuat(0, 0, 0.3826834, 0.9238795)}}, Static))

	ab, err := g.LookupAt("A", "B", 0)
	require.NoError(t, err)
	ba, err := g.LookupAt("B", "A", 0)
	require.NoError(t, err)

	composed := ab.Pose.Compose(ba.Pose)
	approxPose(t, IdentityPose, composed)
}

// Property 8: static is time independent.
func TestStaticTimeIndependent(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 0, Pose: Pose{Translation: Vec3{1, 0, 0}, Rotation: IdentityQuat}}, Static))

	latest, err := g.LookupLatest("A", "B")
	require.NoError(t, err)
	at, err := g.LookupAt("A", "B", 999_999_999_999)
	require.NoError(t, err)
	approxPose(t, latest.Pose, at.Pose)
}

// Property 13: observer replay.
func TestObserverReplay(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 0, Pose: IdentityPose}, Static))
	require.NoError(t, g.Update("B", "C", StampedPose{Stamp: 0, Pose: IdentityPose}, Static))

	var events []UpdateEvent
	g.RegisterObserver(ObserverFunc(func(e UpdateEvent) { events = append(events, e) }))
	assert.Len(t, events, 2)

	require.NoError(t, g.Update("A", "B", StampedPose{Stamp: 1, Pose: IdentityPose}, Static))
	assert.Len(t, events, 3)
}
