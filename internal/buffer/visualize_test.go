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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualizeIncludesEdgeLabels(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("world", "robot", StampedPose{Stamp: 1, Pose: IdentityPose}, Static))

	dot := g.Visualize()
	assert.Contains(t, dot, "digraph frames {")
	assert.Contains(t, dot, `"world" -> "robot"`)
}

func TestSaveVisualizationWritesDotFile(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Update("world", "robot", StampedPose{Stamp: 1, Pose: IdentityPose}, Static))

	dir := t.TempDir()
	dotPath, err := g.SaveVisualization(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "graph.dot"), dotPath)

	data, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"world" -> "robot"`)
}
