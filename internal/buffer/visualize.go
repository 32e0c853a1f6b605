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
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aleutian-robotics/framebus/internal/logging"
)

// eulerZYX converts a unit quaternion to (roll, pitch, yaw) radians,
// used only for the human-readable Visualize output.
func eulerZYX(q Quat) (roll, pitch, yaw float64) {
	sinrCosp := 2 * (q.W*q.X + q.Y*q.Z)
	cosrCosp := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll = math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	if sinp >= 1 {
		pitch = math.Pi / 2
	} else if sinp <= -1 {
		pitch = -math.Pi / 2
	} else {
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (q.W*q.Z + q.X*q.Y)
	cosyCosp := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw = math.Atan2(sinyCosp, cosyCosp)
	return
}

// Visualize returns a Graphviz `dot` description of the frame forest:
// nodes are labeled by frame name, edges are labeled with translation,
// Euler-angle rotation, and the latest sample's timestamp.
func (g *Graph) Visualize() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph frames {\n")
	for _, e := range g.edgeList {
		latest, ok := e.history.Latest()
		if !ok {
			continue
		}
		roll, pitch, yaw := eulerZYX(latest.Pose.Rotation)
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n",
			g.index.name(e.from), g.index.name(e.to),
			fmt.Sprintf("t=[%.3f,%.3f,%.3f] rpy=[%.3f,%.3f,%.3f] stamp=%d",
				latest.Pose.Translation.X, latest.Pose.Translation.Y, latest.Pose.Translation.Z,
				roll, pitch, yaw, int64(latest.Stamp)))
	}
	b.WriteString("}\n")
	return b.String()
}

// SaveVisualization writes Visualize()'s output to "graph.dot" inside
// dir and, if the "dot" rasterizer is on PATH, additionally renders
// "graph.pdf". Rasterizer failure is logged through the default logger
// and is not fatal: the returned error only reports failures writing the
// .dot file itself.
func (g *Graph) SaveVisualization(dir string) (dotPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("buffer: create visualization dir: %w", err)
	}
	dotPath = filepath.Join(dir, "graph.dot")
	if err := os.WriteFile(dotPath, []byte(g.Visualize()), 0o644); err != nil {
		return "", fmt.Errorf("buffer: write %s: %w", dotPath, err)
	}
	pdfPath := filepath.Join(dir, "graph.pdf")
	if err := exec.Command("dot", "-Tpdf", dotPath, "-o", pdfPath).Run(); err != nil {
		logging.Default().Warn("rasterizing graph visualization failed", "path", pdfPath, "error", err)
	}
	return dotPath, nil
}
