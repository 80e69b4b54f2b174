// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package inflatelib decompresses DEFLATE payloads found in ZIP members and
// PDF FlateDecode streams. Decompression is modelled as a platform
// capability so callers can degrade when the runtime has none.
package inflatelib

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"invoice-architect/internal/diagnostic"
)

// Format selects the framing of the compressed payload.
type Format int

const (
	// Raw is headerless DEFLATE as stored in ZIP members.
	Raw Format = iota
	// Zlib is DEFLATE with the two byte zlib header, as used by PDF FlateDecode.
	Zlib
)

func (f Format) String() string {
	switch f {
	case Raw:
		return "deflate-raw"
	case Zlib:
		return "zlib"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// DefaultMaxOutput caps inflated output per payload.
const DefaultMaxOutput = 64 << 20

var (
	// ErrUnavailable is returned when the runtime offers no decompressor.
	ErrUnavailable = errors.New("no decompression capability available")
	// ErrEmptyOutput is returned when a payload inflates to nothing.
	ErrEmptyOutput = errors.New("inflation produced no output")
	// ErrOutputLimit is returned when a payload exceeds the output cap.
	ErrOutputLimit = errors.New("inflated output exceeds limit")
)

// Inflater is the decompression capability offered by the runtime.
type Inflater interface {
	CanInflate() bool
	Inflate(data []byte, format Format) ([]byte, error)
}

// Native inflates with the standard library streaming readers.
type Native struct {
	// MaxOutput bounds the inflated size; zero means DefaultMaxOutput.
	MaxOutput int64
}

// NewNative returns a Native inflater with the given output cap.
func NewNative(maxOutput int64) *Native {
	return &Native{MaxOutput: maxOutput}
}

func (n *Native) CanInflate() bool { return true }

// Inflate decompresses data. A zlib payload whose header is missing is
// retried as raw DEFLATE, and that retry must decode cleanly. Otherwise a
// truncated stream returns whatever was recovered before the break, as long
// as that is not empty.
func (n *Native) Inflate(data []byte, format Format) ([]byte, error) {
	limit := n.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}

	if format == Zlib {
		out, err := inflateZlib(data, limit)
		if err == nil || !errors.Is(err, zlib.ErrHeader) {
			return out, err
		}
		raw, rawErr := inflateRaw(data, limit, false)
		if rawErr != nil {
			return nil, err
		}
		return raw, nil
	}
	return inflateRaw(data, limit, true)
}

func inflateZlib(data []byte, limit int64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer r.Close()
	return drain(r, limit, true)
}

func inflateRaw(data []byte, limit int64, keepPartial bool) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return drain(r, limit, keepPartial)
}

func drain(r io.Reader, limit int64, keepPartial bool) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if n > limit {
		return nil, ErrOutputLimit
	}
	if err != nil && (!keepPartial || buf.Len() == 0) {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyOutput
	}
	return buf.Bytes(), nil
}

// Unavailable models a runtime without a decompression primitive.
type Unavailable struct{}

func (Unavailable) CanInflate() bool { return false }

func (Unavailable) Inflate([]byte, Format) ([]byte, error) { return nil, ErrUnavailable }

// InflateOrEmpty never fails outward: on any failure it returns an empty
// buffer and records why in the returned diagnostics.
func InflateOrEmpty(inf Inflater, data []byte, format Format) ([]byte, diagnostic.List) {
	var diags diagnostic.List
	if inf == nil || !inf.CanInflate() {
		diags.Add(diagnostic.StageInflate, "decompression is not available", ErrUnavailable)
		return []byte{}, diags
	}
	out, err := inf.Inflate(data, format)
	if err != nil {
		diags.Add(diagnostic.StageInflate, fmt.Sprintf("%s payload of %d bytes could not be inflated", format, len(data)), err)
		return []byte{}, diags
	}
	return out, diags
}
