// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"regexp"
	"strings"

	"invoice-architect/internal/diagnostic"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
)

var (
	streamKeyword    = []byte("stream")
	endstreamKeyword = []byte("endstream")

	filterPattern    = regexp.MustCompile(`/Filter\s*(\[[^\]]*\]|/[A-Za-z0-9]+)`)
	filterName       = regexp.MustCompile(`/([A-Za-z0-9]+)`)
	imageSubtype     = regexp.MustCompile(`/Subtype\s*/Image\b`)
	pageTypePattern  = regexp.MustCompile(`/Type\s*/Page\b`)
	unsupportedCodec = map[string]bool{
		"ASCII85Decode": true, "A85": true,
		"LZWDecode": true, "LZW": true,
	}
	imageCodec = map[string]bool{
		"DCTDecode": true, "DCT": true,
		"JPXDecode": true, "CCITTFaxDecode": true, "CCF": true,
		"JBIG2Decode": true,
	}
)

// rawStream is one stream segment together with its governing dictionary.
type rawStream struct {
	offset int
	dict   []byte
	data   []byte
}

// ScanText recovers text from a PDF buffer without a full object parser.
// It never fails; every degraded stream is reported in the diagnostics.
func ScanText(data []byte, inf inflatelib.Inflater) (string, diagnostic.List) {
	var diags diagnostic.List

	segments := findStreams(data, &diags)
	if len(segments) == 0 {
		diags.Add(diagnostic.StagePDF, "no content streams found; returning raw document text", nil)
		return latin1(data), diags
	}

	var decoded [][]byte
	for _, seg := range segments {
		if body, ok := decodeStream(seg, inf, &diags); ok {
			decoded = append(decoded, body)
		}
	}

	var parts []string
	for _, body := range decoded {
		if t := extractTextObjects(body); t != "" {
			parts = append(parts, t)
		}
	}
	text := normalizeText(strings.Join(parts, "\n"))

	if text == "" && len(decoded) > 0 {
		diags.Add(diagnostic.StagePDF, "no text objects found; scanning all string tokens", nil)
		text = normalizeText(scanStringTokens(bytes.Join(decoded, []byte{'\n'})))
	}

	if text == "" {
		diags.Add(diagnostic.StagePDF, "no text recovered from streams; returning raw document text", nil)
		return latin1(data), diags
	}
	return text, diags
}

// findStreams locates every stream ... endstream segment in byte order.
func findStreams(data []byte, diags *diagnostic.List) []rawStream {
	var out []rawStream
	floor := 0
	pos := 0
	for pos < len(data) {
		idx := bytes.Index(data[pos:], streamKeyword)
		if idx < 0 {
			break
		}
		kw := pos + idx
		start := kw + len(streamKeyword)

		if kw >= 3 && bytes.Equal(data[kw-3:kw], []byte("end")) {
			pos = start
			continue
		}
		if start >= len(data) || (data[start] != '\r' && data[start] != '\n') {
			pos = start
			continue
		}
		if data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		end := len(data)
		next := len(data)
		if e := bytes.Index(data[start:], endstreamKeyword); e >= 0 {
			end = start + e
			next = end + len(endstreamKeyword)
		} else {
			diags.Addf(diagnostic.StagePDF, "stream at offset %d has no endstream marker", kw)
		}

		out = append(out, rawStream{
			offset: kw,
			dict:   precedingDictionary(data[floor:kw]),
			data:   trimTrailingEOL(data[start:end]),
		})
		floor = next
		pos = next
	}
	return out
}

// precedingDictionary returns the last balanced << ... >> in region.
func precedingDictionary(region []byte) []byte {
	end := bytes.LastIndex(region, []byte(">>"))
	if end < 0 {
		return nil
	}
	depth := 0
	for j := end - 1; j >= 1; j-- {
		switch {
		case region[j-1] == '>' && region[j] == '>':
			depth++
			j--
		case region[j-1] == '<' && region[j] == '<':
			if depth == 0 {
				return region[j-1 : end+2]
			}
			depth--
			j--
		}
	}
	return nil
}

func streamFilters(dict []byte) []string {
	m := filterPattern.FindSubmatch(dict)
	if m == nil {
		return nil
	}
	var names []string
	for _, n := range filterName.FindAllSubmatch(m[1], -1) {
		names = append(names, string(n[1]))
	}
	return names
}

// decodeStream applies the stream's filter. It reports false for streams
// that carry no text: images and encodings the scanner cannot decode.
func decodeStream(seg rawStream, inf inflatelib.Inflater, diags *diagnostic.List) ([]byte, bool) {
	if imageSubtype.Match(seg.dict) {
		return nil, false
	}

	filters := streamFilters(seg.dict)
	flate := false
	for _, f := range filters {
		switch {
		case unsupportedCodec[f]:
			diags.Addf(diagnostic.StagePDF, "stream at offset %d skipped: unsupported filter %s", seg.offset, f)
			return nil, false
		case imageCodec[f]:
			return nil, false
		case f == "FlateDecode" || f == "Fl":
			flate = true
		}
	}

	if !flate {
		return seg.data, true
	}

	out, inflateDiags := inflatelib.InflateOrEmpty(inf, seg.data, inflatelib.Zlib)
	if len(out) == 0 {
		diags.Merge(inflateDiags)
		diags.Addf(diagnostic.StagePDF, "stream at offset %d could not be inflated; using raw bytes", seg.offset)
		return seg.data, true
	}
	return out, true
}

// countPages counts page objects for documents read by the scanner.
func countPages(data []byte) int {
	return len(pageTypePattern.FindAllIndex(data, -1))
}
