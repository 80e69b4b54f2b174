// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractofficetextlib

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"invoice-architect/internal/diagnostic"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
	zipcontainerlib "invoice-architect/internal/preprocessors/text-extractors/zip-container-lib"
)

// TextContent represents the extracted text content from a document
type TextContent struct {
	Text       string
	Format     string
	PageCount  int
	WordCount  int
	CharCount  int
	LineCount  int
	Paragraphs int
}

// ExtractText extracts text from an OOXML document held in memory. Damaged
// containers and parts produce diagnostics and whatever text survived; only
// an extension this package does not handle is an error.
func ExtractText(data []byte, ext string, inf inflatelib.Inflater) (*TextContent, diagnostic.List, error) {
	content := &TextContent{}

	var format string
	switch strings.ToLower(ext) {
	case ".docx":
		format = "Word Document"
	case ".xlsx", ".xls":
		format = "Excel Spreadsheet"
	default:
		return nil, nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	content.Format = format

	dir, diags := zipcontainerlib.ReadDirectory(data)
	if format == "Word Document" {
		content.Text = docxText(dir, inf, &diags)
		content.PageCount = readPageCount(dir, inf)
	} else {
		content.Text = xlsxText(dir, inf, &diags)
	}

	content.WordCount = countWords(content.Text)
	content.CharCount = len(content.Text)
	if content.Text != "" {
		content.LineCount = strings.Count(content.Text, "\n") + 1
		content.Paragraphs = content.LineCount
	}
	return content, diags, nil
}

// openPart reads one archive member, recording a diagnostic when it is
// missing or cannot be decoded.
func openPart(dir *zipcontainerlib.Directory, name string, inf inflatelib.Inflater, stage diagnostic.Stage, diags *diagnostic.List) ([]byte, bool) {
	if _, ok := dir.Entry(name); !ok {
		diags.Addf(stage, "%s not found in the archive", name)
		return nil, false
	}
	body, err := dir.Open(name, inf)
	if err != nil {
		diags.Add(stage, fmt.Sprintf("%s could not be read", name), err)
		return nil, false
	}
	return body, true
}

// readPageCount picks up the page count Word records in docProps/app.xml.
func readPageCount(dir *zipcontainerlib.Directory, inf inflatelib.Inflater) int {
	if _, ok := dir.Entry("docProps/app.xml"); !ok {
		return 0
	}
	body, err := dir.Open("docProps/app.xml", inf)
	if err != nil {
		return 0
	}
	var props struct {
		Pages string `xml:"Pages"`
	}
	if err := xml.Unmarshal(body, &props); err != nil {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(props.Pages))
	return n
}

func newDecoder(body []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.Strict = false
	return d
}

// countWords counts the number of words in a text
func countWords(text string) int {
	return len(strings.Fields(text))
}
