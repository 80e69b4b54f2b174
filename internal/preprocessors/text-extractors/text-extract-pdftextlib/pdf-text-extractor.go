// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"fmt"
	"strings"

	"invoice-architect/internal/diagnostic"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
)

// Engine selects how PDF text is recovered.
type Engine string

const (
	// EngineScan walks raw streams and text objects without an object parser.
	EngineScan Engine = "scan"
	// EngineLayout rebuilds rows from glyph positions with ledongthuc/pdf.
	EngineLayout Engine = "layout"
	// EnginePDFCPU decodes page content streams with pdfcpu.
	EnginePDFCPU Engine = "pdfcpu"
)

// DefaultMaxPages bounds the pages read by the library engines.
const DefaultMaxPages = 50

// ParseEngine validates an engine name; empty selects EngineScan.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case "":
		return EngineScan, nil
	case EngineScan, EngineLayout, EnginePDFCPU:
		return e, nil
	default:
		return "", fmt.Errorf("unknown PDF engine %q (valid: scan, layout, pdfcpu)", name)
	}
}

// Options configures ExtractText.
type Options struct {
	Engine   Engine
	Inflater inflatelib.Inflater
	MaxPages int
}

// TextContent represents the extracted text content from a PDF document
type TextContent struct {
	Text      string
	Engine    Engine
	PageCount int
	WordCount int
	CharCount int
	LineCount int
}

// ExtractText recovers the text of a PDF buffer. Library engines fall back
// to the stream scanner when they fail or find nothing, so a result is
// always returned.
func ExtractText(data []byte, opts Options) (*TextContent, diagnostic.List) {
	var diags diagnostic.List
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	content := &TextContent{Engine: EngineScan}

	var (
		text  string
		pages int
		err   error
	)
	switch opts.Engine {
	case EngineLayout:
		text, pages, err = extractLayoutText(data, maxPages)
	case EnginePDFCPU:
		text, pages, err = extractContentText(data, maxPages)
	}

	if opts.Engine == EngineLayout || opts.Engine == EnginePDFCPU {
		text = normalizeText(text)
		switch {
		case err != nil:
			diags.Add(diagnostic.StagePDF, fmt.Sprintf("%s engine failed; falling back to stream scan", opts.Engine), err)
		case text == "":
			diags.Addf(diagnostic.StagePDF, "%s engine found no text; falling back to stream scan", opts.Engine)
		default:
			content.Engine = opts.Engine
			content.PageCount = pages
		}
	}

	if content.Engine == EngineScan {
		var scanDiags diagnostic.List
		text, scanDiags = ScanText(data, opts.Inflater)
		diags.Merge(scanDiags)
		content.PageCount = countPages(data)
	}

	content.Text = text
	content.WordCount = len(strings.Fields(text))
	content.CharCount = len(text)
	if text != "" {
		content.LineCount = strings.Count(text, "\n") + 1
	}
	return content, diags
}
