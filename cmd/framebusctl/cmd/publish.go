// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aleutian-robotics/framebus/internal/buffer"
)

func newPublishCmd() *cobra.Command {
	var (
		from, to                       string
		tx, ty, tz, qx, qy, qz, qw     float64
		static                         bool
	)
	c := &cobra.Command{
		Use:   "publish",
		Short: "publish a stamped pose on transforms/new",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, bus, err := dialClient()
			if err != nil {
				return err
			}
			defer bus.Close()

			kind := buffer.Dynamic
			if static {
				kind = buffer.Static
			}
			sp := buffer.StampedPose{
				Stamp: buffer.Timestamp(time.Now().UnixNano()),
				Pose: buffer.Pose{
					Translation: buffer.Vec3{X: tx, Y: ty, Z: tz},
					Rotation:    buffer.NewQuat(qx, qy, qz, qw),
				},
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := cl.SendTransform(ctx, from, to, sp, kind); err != nil {
				return err
			}
			fmt.Printf("published %s -> %s\n", from, to)
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "source frame name")
	c.Flags().StringVar(&to, "to", "", "target frame name")
	c.Flags().Float64Var(&tx, "tx", 0, "translation x")
	c.Flags().Float64Var(&ty, "ty", 0, "translation y")
	c.Flags().Float64Var(&tz, "tz", 0, "translation z")
	c.Flags().Float64Var(&qx, "qx", 0, "rotation quaternion x")
	c.Flags().Float64Var(&qy, "qy", 0, "rotation quaternion y")
	c.Flags().Float64Var(&qz, "qz", 0, "rotation quaternion z")
	c.Flags().Float64Var(&qw, "qw", 1, "rotation quaternion w")
	c.Flags().BoolVar(&static, "static", false, "publish as a static (time-invariant) transform")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}
