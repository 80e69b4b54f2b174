// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package inflatelib

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-architect/internal/diagnostic"
)

func deflateRaw(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func deflateZlib(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestNativeInflate(t *testing.T) {
	payload := strings.Repeat("Invoice Number: INV-2024-001\n", 20)

	tests := []struct {
		name   string
		data   []byte
		format Format
	}{
		{name: "raw deflate", data: deflateRaw(t, payload), format: Raw},
		{name: "zlib", data: deflateZlib(t, payload), format: Zlib},
		{name: "zlib requested but raw supplied", data: deflateRaw(t, payload), format: Zlib},
	}

	inf := NewNative(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := inf.Inflate(tt.data, tt.format)
			require.NoError(t, err)
			assert.Equal(t, payload, string(out))
		})
	}
}

func TestNativeInflateTruncatedKeepsPrefix(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, "Widget %d   %d   %d.00   %d%%\n", i, i*7%13, i*31%97, i%28)
	}
	payload := sb.String()
	data := deflateRaw(t, payload)

	out, err := NewNative(0).Inflate(data[:len(data)/2], Raw)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(payload, string(out)))
}

func TestNativeInflateOutputLimit(t *testing.T) {
	data := deflateRaw(t, strings.Repeat("A", 4096))

	_, err := NewNative(1024).Inflate(data, Raw)
	assert.ErrorIs(t, err, ErrOutputLimit)
}

func TestInflateOrEmpty(t *testing.T) {
	t.Run("garbage yields empty buffer and diagnostic", func(t *testing.T) {
		out, diags := InflateOrEmpty(NewNative(0), []byte{0xff, 0xff, 0xff, 0xff}, Raw)
		assert.Empty(t, out)
		assert.NotNil(t, out)
		require.Len(t, diags, 1)
		assert.Equal(t, diagnostic.StageInflate, diags[0].Stage)
	})

	t.Run("unavailable capability", func(t *testing.T) {
		out, diags := InflateOrEmpty(Unavailable{}, deflateRaw(t, "x"), Raw)
		assert.Empty(t, out)
		require.Len(t, diags, 1)
		assert.ErrorIs(t, diags[0].Err, ErrUnavailable)
	})

	t.Run("nil inflater", func(t *testing.T) {
		out, diags := InflateOrEmpty(nil, []byte("x"), Zlib)
		assert.Empty(t, out)
		assert.Len(t, diags, 1)
	})

	t.Run("success records nothing", func(t *testing.T) {
		out, diags := InflateOrEmpty(NewNative(0), deflateZlib(t, "hello"), Zlib)
		assert.Equal(t, "hello", string(out))
		assert.Empty(t, diags)
	})
}
