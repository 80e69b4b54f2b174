// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractofficetextlib

import (
	"encoding/xml"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"invoice-architect/internal/diagnostic"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
	zipcontainerlib "invoice-architect/internal/preprocessors/text-extractors/zip-container-lib"
)

const (
	sharedStringsPart = "xl/sharedStrings.xml"
	firstSheetPart    = "xl/worksheets/sheet1.xml"
	worksheetsDir     = "xl/worksheets/"

	// maxColumns is the column count of the widest sheet Excel allows (XFD).
	maxColumns = 16384
)

var sheetNumber = regexp.MustCompile(`sheet(\d+)\.xml$`)

// ExtractXlsxText renders the first worksheet as comma-joined rows. Cell
// positions come from the cell reference so sparse rows keep their columns.
func ExtractXlsxText(data []byte, inf inflatelib.Inflater) (string, diagnostic.List) {
	dir, diags := zipcontainerlib.ReadDirectory(data)
	text := xlsxText(dir, inf, &diags)
	return text, diags
}

func xlsxText(dir *zipcontainerlib.Directory, inf inflatelib.Inflater, diags *diagnostic.List) string {
	var shared []string
	if _, ok := dir.Entry(sharedStringsPart); ok {
		if body, ok := openPart(dir, sharedStringsPart, inf, diagnostic.StageXLSX, diags); ok {
			shared = parseSharedStrings(body, diags)
		}
	}

	sheet := firstWorksheet(dir)
	if sheet == "" {
		diags.Add(diagnostic.StageXLSX, "no worksheet found in the archive", nil)
		return ""
	}
	body, ok := openPart(dir, sheet, inf, diagnostic.StageXLSX, diags)
	if !ok {
		return ""
	}
	return strings.Join(parseWorksheet(body, shared, diags), "\n")
}

// firstWorksheet prefers sheet1.xml, then the lowest numbered sheet.
func firstWorksheet(dir *zipcontainerlib.Directory) string {
	if _, ok := dir.Entry(firstSheetPart); ok {
		return firstSheetPart
	}
	sheets := dir.Match(worksheetsDir, ".xml")
	if len(sheets) == 0 {
		return ""
	}
	sort.SliceStable(sheets, func(i, j int) bool {
		return worksheetOrder(sheets[i]) < worksheetOrder(sheets[j])
	})
	return sheets[0]
}

func worksheetOrder(name string) int {
	m := sheetNumber.FindStringSubmatch(path.Base(name))
	if m == nil {
		return maxColumns
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return maxColumns
	}
	return n
}

// parseSharedStrings returns the text of every <si>, concatenating rich-text
// runs and skipping phonetic hints.
func parseSharedStrings(body []byte, diags *diagnostic.List) []string {
	var (
		out      []string
		cur      strings.Builder
		inText   bool
		phonetic int
	)
	d := newDecoder(body)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			diags.Add(diagnostic.StageXLSX, "sharedStrings.xml is malformed; keeping strings read so far", err)
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "si":
				cur.Reset()
			case "rPh":
				phonetic++
			case "t":
				inText = phonetic == 0
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "si":
				out = append(out, cur.String())
			case "rPh":
				phonetic--
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(el)
			}
		}
	}
	return out
}

// xlsxCell collects the pieces of one <c> element.
type xlsxCell struct {
	col      int
	kind     string
	value    strings.Builder
	inline   strings.Builder
	inValue  bool
	inInline bool
}

func (c *xlsxCell) resolve(shared []string) string {
	switch c.kind {
	case "inlineStr":
		return c.inline.String()
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.value.String()))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "b":
		if strings.TrimSpace(c.value.String()) == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return c.value.String()
	}
}

func parseWorksheet(body []byte, shared []string, diags *diagnostic.List) []string {
	var (
		lines   []string
		row     []string
		inRow   bool
		nextCol int
		cell    *xlsxCell
	)

	flushRow := func() {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				lines = append(lines, strings.Join(row, ","))
				break
			}
		}
		row = nil
		inRow = false
	}

	d := newDecoder(body)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			diags.Add(diagnostic.StageXLSX, "worksheet is malformed; keeping rows read so far", err)
			if inRow {
				flushRow()
			}
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "row":
				row = nil
				inRow = true
				nextCol = 0
			case "c":
				cell = &xlsxCell{col: nextCol}
				for _, attr := range el.Attr {
					switch attr.Name.Local {
					case "r":
						if col, ok := columnIndex(attr.Value); ok {
							cell.col = col
						}
					case "t":
						cell.kind = attr.Value
					}
				}
			case "v":
				if cell != nil {
					cell.inValue = true
				}
			case "t":
				if cell != nil {
					cell.inInline = true
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "v":
				if cell != nil {
					cell.inValue = false
				}
			case "t":
				if cell != nil {
					cell.inInline = false
				}
			case "c":
				if cell != nil && cell.col < maxColumns {
					for len(row) <= cell.col {
						row = append(row, "")
					}
					row[cell.col] = cell.resolve(shared)
					nextCol = cell.col + 1
				}
				cell = nil
			case "row":
				flushRow()
			}
		case xml.CharData:
			if cell == nil {
				continue
			}
			if cell.inValue {
				cell.value.Write(el)
			}
			if cell.inInline {
				cell.inline.Write(el)
			}
		}
	}
	return lines
}

// columnIndex converts the letters of a cell reference such as "AB12" to a
// zero-based column: A=0, Z=25, AA=26.
func columnIndex(ref string) (int, bool) {
	col := 0
	n := 0
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			break
		}
		col = col*26 + int(r-'A'+1)
		n++
		if col > maxColumns {
			return 0, false
		}
	}
	if n == 0 {
		return 0, false
	}
	return col - 1, true
}
