// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cmd implements the framebusd command tree.
package cmd

import (
	"github.com/spf13/cobra"
)

// Exit codes per the service CLI contract: 0 clean shutdown, 1 fatal
// init failure, 2 transport failure after startup.
const (
	ExitOK               = 0
	ExitInitFailure      = 1
	ExitTransportFailure = 2
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "framebusd",
		Short: "framebusd serves the coordinate-frame transform buffer over a message bus",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	root.AddCommand(newServeCmd())
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if code, ok := err.(exitCoder); ok {
			return code.ExitCode()
		}
		return ExitInitFailure
	}
	return ExitOK
}

// exitCoder lets a command report a specific exit code without
// cobra's own error-printing path forcing it to 1.
type exitCoder interface {
	error
	ExitCode() int
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }
func (e *exitError) Unwrap() error { return e.err }
