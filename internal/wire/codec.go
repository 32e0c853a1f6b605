// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package wire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSerialization wraps every decode/encode failure surfaced by this
// package.
var ErrSerialization = errors.New("wire: serialization error")

// maxFrameLen guards against a corrupt or adversarial length prefix
// forcing an unbounded allocation on decode.
const maxFrameLen = 16 << 20

// Encode serializes v (one of NewTransform, TransformRequest,
// TransformResponse) as a 4-byte big-endian length prefix followed by
// its JSON body, so the result is self-delimited on a byte stream.
func Encode(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out, uint32(len(body)))
	copy(out[4:], body)
	return out, nil
}

// Decode parses a single length-prefixed frame from buf into v,
// returning the number of bytes consumed. v must be a pointer to one
// of the wire record types.
func Decode(buf []byte, v any) (consumed int, err error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("%w: frame too short for length prefix", ErrSerialization)
	}
	n := binary.BigEndian.Uint32(buf)
	if n > maxFrameLen {
		return 0, fmt.Errorf("%w: frame length %d exceeds maximum", ErrSerialization, n)
	}
	if len(buf) < 4+int(n) {
		return 0, fmt.Errorf("%w: truncated frame", ErrSerialization)
	}
	body := buf[4 : 4+int(n)]
	if err := json.Unmarshal(body, v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return 4 + int(n), nil
}

// DecodeExact decodes a single frame that is expected to fill buf
// entirely, e.g. a single NATS message payload. It errors if trailing
// bytes remain after the frame.
func DecodeExact(buf []byte, v any) error {
	n, err := Decode(buf, v)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("%w: %d trailing bytes after frame", ErrSerialization, len(buf)-n)
	}
	return nil
}
