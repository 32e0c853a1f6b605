// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package client implements the counterpart to package service:
// send_transform publishes a stamped pose, request_transform issues a
// correlated query and resolves Reply/Timeout/TransportError into a
// pose or an error.
package client

import "errors"

var (
	// ErrResponseIDMismatch is returned when a reply's correlation id
	// does not match the outstanding request's id.
	ErrResponseIDMismatch = errors.New("client: response id mismatch")

	// ErrNoResponse is returned when the transport yields no reply
	// before the request's deadline elapses.
	ErrNoResponse = errors.New("client: no response")

	// ErrTransportFailure wraps any other transport-level failure.
	ErrTransportFailure = errors.New("client: transport failure")
)
