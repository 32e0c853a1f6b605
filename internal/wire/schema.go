// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wire implements the on-the-wire record formats exchanged
// between clients and the service: transform publications, transform
// queries, and query responses.
//
// Field tags are chosen to stay stable across versions; unknown fields
// on decode are ignored by encoding/json's default unmarshal behavior,
// satisfying the forward-compatibility requirement without hand-rolled
// field numbering.
package wire

// Kind mirrors buffer.Kind on the wire so this package has no
// dependency on the buffer package's internal representation.
type Kind int

const (
	KindStatic  Kind = 0
	KindDynamic Kind = 1
)

// NewTransform is published to the transforms/new topic to announce a
// single stamped pose on a directed frame pair.
type NewTransform struct {
	From        string     `json:"from"`
	To          string     `json:"to"`
	Time        int64      `json:"time"`
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"`
	Kind        Kind       `json:"kind"`
}

// TransformRequest is sent to the transforms/get endpoint to query the
// composed transform between two frames. Time == 0 means "latest". Id
// is an optional end-to-end correlation token for transports that
// don't correlate requests and replies natively.
type TransformRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Time int64  `json:"time"`
	ID   uint64 `json:"id,omitempty"`
}

// TransformResponse answers a TransformRequest. When Success is false,
// the pose fields are meaningless and ErrorMessage explains why.
type TransformResponse struct {
	Time         int64      `json:"time"`
	Translation  [3]float64 `json:"translation"`
	Rotation     [4]float64 `json:"rotation"`
	Success      bool       `json:"success"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ID           uint64     `json:"id,omitempty"`
}
