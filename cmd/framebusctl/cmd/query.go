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

	"github.com/spf13/cobra"

	"github.com/aleutian-robotics/framebus/internal/buffer"
)

func newQueryCmd() *cobra.Command {
	var (
		from, to string
		atNanos  int64
	)
	c := &cobra.Command{
		Use:   "query",
		Short: "request the composed transform between two frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, bus, err := dialClient()
			if err != nil {
				return err
			}
			defer bus.Close()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			sp, err := cl.RequestTransform(ctx, from, to, buffer.Timestamp(atNanos))
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s @ %d: translation=%v rotation=%v\n",
				from, to, sp.Stamp, sp.Pose.Translation, sp.Pose.Rotation)
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "source frame name")
	c.Flags().StringVar(&to, "to", "", "target frame name")
	c.Flags().Int64Var(&atNanos, "at", 0, "query time in nanoseconds (0 = latest)")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}
