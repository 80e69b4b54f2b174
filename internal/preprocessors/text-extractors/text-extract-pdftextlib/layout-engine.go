// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractLayoutText reads the document with ledongthuc/pdf and rebuilds each
// page row by row from glyph positions. AcroForm fields are appended as
// "Name: Value" lines.
func extractLayoutText(data []byte, maxPages int) (text string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("error opening PDF: %w", err)
	}

	pageCount = r.NumPage()
	pages := pageCount
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var buf strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := extractPageRows(p)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(pageText)
	}

	if form := extractFormData(r); form != "" {
		buf.WriteByte('\n')
		buf.WriteString(form)
	}

	return buf.String(), pageCount, nil
}

// extractPageRows uses row-based positioning, falling back to plain text.
func extractPageRows(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}

	// PDF y grows upwards, so the top row has the largest y.
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf strings.Builder
	for _, row := range sorted {
		if line := reconstructRow(row.Content); strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// reconstructRow orders glyph runs left to right and inserts a space where
// the gap exceeds a fifth of the font size.
func reconstructRow(texts []pdf.Text) string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var buf strings.Builder
	for i, t := range sorted {
		buf.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if sorted[i+1].X-(t.X+t.W) > fontSize*0.2 {
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}

// extractFormData lists filled AcroForm fields.
func extractFormData(r *pdf.Reader) string {
	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return ""
	}
	fields := root.Key("AcroForm").Key("Fields")
	if fields.IsNull() || fields.Kind() != pdf.Array {
		return ""
	}

	var lines []string
	for i := 0; i < fields.Len(); i++ {
		name, value := fieldNameValue(fields.Index(i))
		if name != "" && value != "" {
			lines = append(lines, name+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}

func fieldNameValue(field pdf.Value) (string, string) {
	if field.Kind() != pdf.Dict {
		return "", ""
	}

	var name string
	if t := field.Key("T"); t.Kind() == pdf.String {
		name = t.Text()
	}

	for _, key := range []string{"V", "DV"} {
		v := field.Key(key)
		switch v.Kind() {
		case pdf.String:
			return name, v.Text()
		case pdf.Name:
			return name, v.Name()
		}
	}
	return name, ""
}
