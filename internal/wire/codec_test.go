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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 11: round-trip encoding for every message kind.
func TestRoundTrip_NewTransform(t *testing.T) {
	want := NewTransform{From: "a", To: "b", Time: 42, Translation: [3]float64{1, 2, 3}, Rotation: [4]float64{0, 0, 0, 1}, Kind: KindDynamic}
	buf, err := Encode(want)
	require.NoError(t, err)

	var got NewTransform
	require.NoError(t, DecodeExact(buf, &got))
	assert.Equal(t, want, got)
}

func TestRoundTrip_TransformRequest(t *testing.T) {
	want := TransformRequest{From: "world", To: "tool", Time: 0, ID: 7}
	buf, err := Encode(want)
	require.NoError(t, err)

	var got TransformRequest
	require.NoError(t, DecodeExact(buf, &got))
	assert.Equal(t, want, got)
}

func TestRoundTrip_TransformResponse(t *testing.T) {
	want := TransformResponse{Time: 9, Translation: [3]float64{1, 0, 0}, Rotation: [4]float64{0, 0, 0, 1}, Success: true}
	buf, err := Encode(want)
	require.NoError(t, err)

	var got TransformResponse
	require.NoError(t, DecodeExact(buf, &got))
	assert.Equal(t, want, got)
}

func TestDecode_UnknownFieldsIgnored(t *testing.T) {
	raw := []byte(`{"from":"a","to":"b","time":1,"translation":[0,0,0],"rotation":[0,0,0,1],"kind":0,"future_field":"x"}`)
	frame := make([]byte, 4+len(raw))
	frame[3] = byte(len(raw))
	copy(frame[4:], raw)

	var got NewTransform
	require.NoError(t, DecodeExact(frame, &got))
	assert.Equal(t, "a", got.From)
}

func TestDecode_TruncatedFrame(t *testing.T) {
	var got NewTransform
	err := DecodeExact([]byte{0, 0, 0, 10, 1, 2}, &got)
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestMultipleFramesOnAStream(t *testing.T) {
	a, err := Encode(TransformRequest{From: "x", To: "y", Time: 1})
	require.NoError(t, err)
	b, err := Encode(TransformRequest{From: "y", To: "z", Time: 2})
	require.NoError(t, err)
	stream := append(a, b...)

	var first TransformRequest
	n, err := Decode(stream, &first)
	require.NoError(t, err)
	assert.Equal(t, "x", first.From)

	var second TransformRequest
	_, err = Decode(stream[n:], &second)
	require.NoError(t, err)
	assert.Equal(t, "y", second.From)
}
