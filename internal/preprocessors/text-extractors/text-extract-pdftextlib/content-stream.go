// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"math"
	"strconv"
	"strings"
)

// Glyph-space adjustments in a TJ array at or below this value read as a
// word gap.
const tjSpaceThreshold = -200

// Baselines closer than this (in text space units) are treated as one row.
const sameRowTolerance = 1.0

type operandKind int

const (
	operandNumber operandKind = iota
	operandString
	operandName
	operandArray
)

type operand struct {
	kind  operandKind
	num   float64
	text  string
	items []operand
}

// rowWriter assembles shown strings into rows keyed by baseline.
type rowWriter struct {
	rows      []string
	cur       strings.Builder
	lastY     float64
	started   bool
	lineBreak bool
}

func (w *rowWriter) show(text string, y float64) {
	if text == "" {
		return
	}
	if w.started && (w.lineBreak || math.Abs(y-w.lastY) > sameRowTolerance) {
		w.flush()
	} else if w.cur.Len() > 0 {
		w.cur.WriteByte(' ')
	}
	w.cur.WriteString(text)
	w.lastY = y
	w.started = true
	w.lineBreak = false
}

func (w *rowWriter) breakLine() {
	w.lineBreak = true
}

func (w *rowWriter) flush() {
	if w.cur.Len() > 0 {
		w.rows = append(w.rows, w.cur.String())
		w.cur.Reset()
	}
}

func (w *rowWriter) String() string {
	w.flush()
	return strings.Join(w.rows, "\n")
}

// textState tracks the text-positioning operators that decide row breaks.
type textState struct {
	inText  bool
	lineY   float64
	y       float64
	leading float64
}

// extractTextObjects returns the strings shown inside BT ... ET text objects
// of a decoded content stream, one output line per baseline.
func extractTextObjects(content []byte) string {
	var (
		w        rowWriter
		ts       textState
		operands []operand
		arrays   [][]operand
	)

	push := func(op operand) {
		if len(arrays) > 0 {
			arrays[len(arrays)-1] = append(arrays[len(arrays)-1], op)
			return
		}
		operands = append(operands, op)
	}

	for i := 0; i < len(content); {
		c := content[i]
		switch {
		case isPDFWhitespace(c):
			i++
		case c == '%':
			for i < len(content) && content[i] != '\n' && content[i] != '\r' {
				i++
			}
		case c == '(':
			raw, next := readLiteral(content, i)
			push(operand{kind: operandString, text: decodeLiteralBytes(raw)})
			i = next
		case c == '<':
			if i+1 < len(content) && content[i+1] == '<' {
				i += 2
				continue
			}
			raw, next, ok := readHex(content, i)
			if ok {
				push(operand{kind: operandString, text: decodeHexBytes(raw)})
			}
			i = next
		case c == '>':
			i++
		case c == '[':
			arrays = append(arrays, nil)
			i++
		case c == ']':
			if len(arrays) > 0 {
				items := arrays[len(arrays)-1]
				arrays = arrays[:len(arrays)-1]
				push(operand{kind: operandArray, items: items})
			}
			i++
		case c == '/':
			j := i + 1
			for j < len(content) && !isPDFWhitespace(content[j]) && !isPDFDelimiter(content[j]) {
				j++
			}
			push(operand{kind: operandName, text: string(content[i+1 : j])})
			i = j
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(content) && (content[j] == '.' || (content[j] >= '0' && content[j] <= '9')) {
				j++
			}
			if n, err := strconv.ParseFloat(string(content[i:j]), 64); err == nil {
				push(operand{kind: operandNumber, num: n})
			}
			i = j
		case isPDFDelimiter(c):
			i++
		default:
			j := i
			for j < len(content) && !isPDFWhitespace(content[j]) && !isPDFDelimiter(content[j]) {
				j++
			}
			op := string(content[i:j])
			i = j
			if op == "ID" {
				i = skipInlineImage(content, i)
			} else {
				applyOperator(op, operands, &ts, &w)
			}
			operands = operands[:0]
			arrays = arrays[:0]
		}
	}
	return w.String()
}

func applyOperator(op string, operands []operand, ts *textState, w *rowWriter) {
	nums := numbers(operands)
	switch op {
	case "BT":
		ts.inText = true
		ts.lineY, ts.y = 0, 0
	case "ET":
		ts.inText = false
	case "Td", "TD":
		if len(nums) >= 2 {
			ty := nums[len(nums)-1]
			ts.lineY += ty
			ts.y = ts.lineY
			if op == "TD" {
				ts.leading = -ty
			}
		}
	case "Tm":
		if len(nums) >= 6 {
			ts.lineY = nums[len(nums)-1]
			ts.y = ts.lineY
		}
	case "TL":
		if len(nums) >= 1 {
			ts.leading = nums[len(nums)-1]
		}
	case "T*":
		ts.lineY -= ts.leading
		ts.y = ts.lineY
		w.breakLine()
	case "Tj":
		if ts.inText {
			w.show(lastString(operands), ts.y)
		}
	case "'", "\"":
		ts.lineY -= ts.leading
		ts.y = ts.lineY
		if ts.inText {
			w.breakLine()
			w.show(lastString(operands), ts.y)
		}
	case "TJ":
		if ts.inText {
			w.show(joinTJ(operands), ts.y)
		}
	}
}

func numbers(operands []operand) []float64 {
	var out []float64
	for _, op := range operands {
		if op.kind == operandNumber {
			out = append(out, op.num)
		}
	}
	return out
}

func lastString(operands []operand) string {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == operandString {
			return operands[i].text
		}
	}
	return ""
}

// joinTJ concatenates the pieces of the last TJ array, turning large
// negative adjustments into spaces.
func joinTJ(operands []operand) string {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind != operandArray {
			continue
		}
		var sb strings.Builder
		for _, item := range operands[i].items {
			switch item.kind {
			case operandString:
				sb.WriteString(item.text)
			case operandNumber:
				if item.num <= tjSpaceThreshold && sb.Len() > 0 {
					sb.WriteByte(' ')
				}
			}
		}
		return sb.String()
	}
	return ""
}

// skipInlineImage moves past the binary payload of an inline image, which
// ends at an EI operator surrounded by whitespace.
func skipInlineImage(content []byte, from int) int {
	for i := from; i+2 <= len(content); i++ {
		if content[i] != 'E' || content[i+1] != 'I' {
			continue
		}
		before := i == 0 || isPDFWhitespace(content[i-1])
		after := i+2 == len(content) || isPDFWhitespace(content[i+2])
		if before && after {
			return i + 2
		}
	}
	return len(content)
}

