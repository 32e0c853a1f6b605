// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cmd implements the framebusctl command tree.
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/aleutian-robotics/framebus/internal/client"
	"github.com/aleutian-robotics/framebus/internal/transport"
)

var (
	natsURL string
	timeout time.Duration
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "framebusctl",
		Short:         "publish and query transforms against a running framebusd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&natsURL, "nats-url", "nats://127.0.0.1:4222", "NATS server URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "query timeout")
	root.AddCommand(newPublishCmd())
	root.AddCommand(newQueryCmd())
	return root
}

// Execute runs the command tree.
func Execute() error {
	return newRootCmd().Execute()
}

func dialClient() (*client.Client, transport.Bus, error) {
	bus, err := transport.DialNATS(natsURL)
	if err != nil {
		return nil, nil, err
	}
	return client.New(bus, timeout), bus, nil
}
