// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractofficetextlib

import (
	"encoding/xml"
	"io"
	"strings"

	"invoice-architect/internal/diagnostic"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
	zipcontainerlib "invoice-architect/internal/preprocessors/text-extractors/zip-container-lib"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// ExtractDocxText returns one line per non-empty paragraph of the main
// document part. Paragraphs of one table row are joined into a single
// tab-separated line.
func ExtractDocxText(data []byte, inf inflatelib.Inflater) (string, diagnostic.List) {
	dir, diags := zipcontainerlib.ReadDirectory(data)
	text := docxText(dir, inf, &diags)
	return text, diags
}

func docxText(dir *zipcontainerlib.Directory, inf inflatelib.Inflater, diags *diagnostic.List) string {
	body, ok := openPart(dir, documentPart, inf, diagnostic.StageDOCX, diags)
	if !ok {
		return ""
	}

	w := &docxWalker{}
	d := newDecoder(body)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			diags.Add(diagnostic.StageDOCX, "document.xml is malformed; keeping text read so far", err)
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if isWord(el.Name) {
				w.start(el.Name.Local)
			}
		case xml.EndElement:
			if isWord(el.Name) {
				w.end(el.Name.Local)
			}
		case xml.CharData:
			if w.inText {
				w.para.Write(el)
			}
		}
	}
	w.endParagraph()
	return strings.Join(w.lines, "\n")
}

func isWord(name xml.Name) bool {
	return name.Space == wordNS || name.Space == "w"
}

// docxWalker accumulates paragraph text while tracking table structure.
type docxWalker struct {
	lines      []string
	para       strings.Builder
	inText     bool
	tableDepth int
	cellParts  []string
	rowCells   []string
}

func (w *docxWalker) start(local string) {
	switch local {
	case "p":
		w.para.Reset()
	case "t":
		w.inText = true
	case "tab":
		w.para.WriteByte('\t')
	case "br", "cr":
		w.para.WriteByte('\n')
	case "tbl":
		w.tableDepth++
	case "tr":
		if w.tableDepth == 1 {
			w.rowCells = nil
		}
	case "tc":
		if w.tableDepth == 1 {
			w.cellParts = nil
		}
	}
}

func (w *docxWalker) end(local string) {
	switch local {
	case "t":
		w.inText = false
	case "p":
		w.endParagraph()
	case "tbl":
		if w.tableDepth > 0 {
			w.tableDepth--
		}
	case "tc":
		if w.tableDepth == 1 {
			w.rowCells = append(w.rowCells, strings.Join(w.cellParts, " "))
			w.cellParts = nil
		}
	case "tr":
		if w.tableDepth == 1 {
			row := strings.TrimRight(strings.Join(w.rowCells, "\t"), "\t")
			if strings.TrimSpace(row) != "" {
				w.lines = append(w.lines, row)
			}
			w.rowCells = nil
		}
	}
}

func (w *docxWalker) endParagraph() {
	text := w.para.String()
	w.para.Reset()
	w.inText = false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if w.tableDepth > 0 {
			w.cellParts = append(w.cellParts, line)
		} else {
			w.lines = append(w.lines, line)
		}
	}
}
