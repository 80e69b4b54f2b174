// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-architect/internal/diagnostic"
	"invoice-architect/internal/observability"
)

func newManager() *PreprocessorManager {
	pm := NewPreprocessorManager()
	pm.RegisterPreprocessor(NewTextPreprocessor(TextOptions{}))
	pm.RegisterPreprocessor(NewPlainTextPreprocessor())
	return pm
}

func docx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func minimalPDF(content string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	buf.WriteString("4 0 obj\n<< /Length 0 >>\nstream\n")
	buf.WriteString(content)
	buf.WriteString("\nendstream\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	return buf.Bytes()
}

func TestManagerSelectsByExtensionAndMIME(t *testing.T) {
	pm := newManager()

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"pdf", Source{Name: "a.PDF"}, "Document Text Extractor"},
		{"docx", Source{Name: "a.docx"}, "Document Text Extractor"},
		{"xlsx", Source{Name: "a.xlsx"}, "Document Text Extractor"},
		{"xls", Source{Name: "a.xls"}, "Document Text Extractor"},
		{"csv", Source{Name: "a.csv"}, "Plain Text Preprocessor"},
		{"text mime", Source{Name: "notes", MIMEType: "text/plain; charset=utf-8"}, "Plain Text Preprocessor"},
		{"markdown mime", Source{Name: "a.md", MIMEType: "text/markdown"}, "Plain Text Preprocessor"},
		{"exe", Source{Name: "setup.exe", MIMEType: "application/x-msdownload"}, ""},
		{"exe claiming text", Source{Name: "setup.exe", MIMEType: "text/plain"}, ""},
		{"image", Source{Name: "scan.png", MIMEType: "image/png"}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := pm.GetPreprocessor(tc.src)
			if tc.want == "" {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tc.want, p.GetName())
		})
	}
}

func TestProcessFileUnsupportedType(t *testing.T) {
	_, err := newManager().ProcessFile(context.Background(), Source{Name: "setup.exe", Data: []byte("MZ")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))
	assert.Equal(t, ErrorTypeUnsupportedFormat, ClassifyError(err))

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, "Unsupported file type.", extractionErr.UserMessage())
}

func TestProcessFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newManager().ProcessFile(ctx, Source{Name: "a.txt", Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancelled, ClassifyError(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProcessDocx(t *testing.T) {
	data := docx(t, `<w:p><w:r><w:t>Invoice No: 42</w:t></w:r></w:p><w:p><w:r><w:t>Widget 2 10.00</w:t></w:r></w:p>`)
	res, err := newManager().ProcessFile(context.Background(), Source{Name: "inv.docx", Data: data})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Invoice No: 42\nWidget 2 10.00", res.Text)
	assert.Equal(t, "Word Document", res.Format)
	assert.Equal(t, 2, res.LineCount)
	assert.Empty(t, res.Diagnostics)
}

func TestProcessCorruptDocxIsDiagnosticNotError(t *testing.T) {
	res, err := newManager().ProcessFile(context.Background(), Source{Name: "broken.docx", Data: []byte("not a zip at all")})
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.True(t, res.Diagnostics.HasStage(diagnostic.StageZip))
}

func TestProcessPDF(t *testing.T) {
	data := minimalPDF("BT /F1 12 Tf 72 720 Td (Invoice Number: INV-7) Tj ET")
	res, err := newManager().ProcessFile(context.Background(), Source{Name: "inv.pdf", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "PDF Document", res.Format)
	assert.Equal(t, "scan", res.Engine)
	assert.Contains(t, res.Text, "Invoice Number: INV-7")
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     string
		encoding string
	}{
		{"utf8", []byte("Café 2 3.00"), "Café 2 3.00", "utf-8"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "Total"...), "Total", "utf-8"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'H', 0, 'i', 0}, "Hi", "utf-16"},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}, "Hi", "utf-16"},
		{"latin1", []byte{'C', 'a', 'f', 0xE9}, "Café", "iso-8859-1"},
		{"decomposed", []byte("Cafe\u0301"), "Caf\u00e9", "utf-8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, enc := DecodeText(tc.data)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.encoding, enc)
		})
	}
}

func TestPlainTextPassthroughKeepsContent(t *testing.T) {
	csv := "Description,Qty,Rate\nWidget,2,10.00\n"
	res, err := newManager().ProcessFile(context.Background(), Source{Name: "items.csv", Data: []byte(csv)})
	require.NoError(t, err)
	assert.Equal(t, csv, res.Text)
	assert.Equal(t, "CSV Spreadsheet", res.Format)
	assert.Equal(t, 3, res.LineCount)
}

func TestValidateSize(t *testing.T) {
	limits := &ResourceLimits{MaxFileSize: 4}
	assert.NoError(t, limits.ValidateSize(Source{Name: "a.txt", Data: []byte("1234")}))

	err := limits.ValidateSize(Source{Name: "a.txt", Data: []byte("12345")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Equal(t, ErrorTypeFileSize, ClassifyError(err))

	assert.NoError(t, (&ResourceLimits{}).ValidateSize(Source{Data: make([]byte, 10)}))
	var nilLimits *ResourceLimits
	assert.NoError(t, nilLimits.ValidateSize(Source{Data: make([]byte, 10)}))
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t,
		[]string{".csv", ".docx", ".pdf", ".text", ".tsv", ".txt", ".xls", ".xlsx"},
		newManager().SupportedExtensions())
}

func TestProcessReportsToObserver(t *testing.T) {
	var buf bytes.Buffer
	pm := newManager()
	pm.SetObserver(observability.NewObserver(true, &buf))

	_, err := pm.ProcessFile(context.Background(), Source{Name: "broken.xlsx", Data: []byte("junk")})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text_preprocessor")
	assert.Contains(t, buf.String(), "[zip]")
}

func TestExtractionErrorMessage(t *testing.T) {
	err := NewExtractionError("a.pdf", ErrorTypeEmptyExtraction, "nothing found", nil)
	assert.Equal(t, "import failed for a.pdf error=empty_extraction message=nothing found", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(errors.New("other")))
	assert.Equal(t, ErrorTypeCancelled, ClassifyError(context.DeadlineExceeded))
}
