// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"invoice-architect/internal/observability"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// PlainTextPreprocessor passes CSV and plain text files through unchanged
// apart from character decoding.
type PlainTextPreprocessor struct {
	extensions *FileExtensionValidator
	observer   *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{
		extensions: NewFileExtensionValidator(),
	}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".csv", ".text", ".tsv", ".txt"}
}

// CanProcess accepts text extensions and any text/* MIME type, except on
// executable extensions.
func (ptp *PlainTextPreprocessor) CanProcess(src Source) bool {
	ext := src.Ext()
	if ptp.extensions.IsTextFile(ext) {
		return true
	}
	if ptp.extensions.IsExecutableFile(ext) {
		return false
	}
	return IsTextMIMEType(src.MIMEType)
}

// Process decodes the file content into text.
func (ptp *PlainTextPreprocessor) Process(ctx context.Context, src Source) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming("plaintext_preprocessor", "process_file", src.Name)
		if ptp.observer.DebugObserver != nil {
			finishStep = ptp.observer.DebugObserver.StartStep("plaintext_preprocessor", "process_file", src.Name)
		}
	}

	result := &ProcessedContent{
		Filename:      src.Name,
		ProcessorType: "plaintext",
		Format:        ptp.getFileTypeDescription(src.Ext()),
	}

	if err := ctx.Err(); err != nil {
		result.Error = NewExtractionError(src.Name, ErrorTypeCancelled, "import cancelled", err)
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": result.Error.Error()})
		}
		if finishStep != nil {
			finishStep(false, "Cancelled before reading text")
		}
		return result, result.Error
	}

	text, encoding := DecodeText(src.Data)
	result.Text = text
	result.Engine = encoding
	result.WordCount, result.CharCount, result.LineCount = CalculateTextMetrics(text)
	result.Paragraphs = CountParagraphs(text)
	result.Success = true

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"encoding":   encoding,
			"word_count": result.WordCount,
			"line_count": result.LineCount,
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Read %s text: %d words, %d lines", encoding, result.WordCount, result.LineCount))
	}

	return result, nil
}

// DecodeText turns file bytes into NFC-normalised text and names the
// encoding used. A byte order mark selects UTF-8 or UTF-16; otherwise valid
// UTF-8 is kept and anything else is read as Latin-1.
func DecodeText(data []byte) (string, string) {
	var (
		text     string
		encoding string
	)
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		text, encoding = string(data[len(bomUTF8):]), "utf-8"
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			text, encoding = latin1(data), "iso-8859-1"
		} else {
			text, encoding = string(out), "utf-16"
		}
	case utf8.Valid(data):
		text, encoding = string(data), "utf-8"
	default:
		text, encoding = latin1(data), "iso-8859-1"
	}
	return norm.NFC.String(text), encoding
}

func latin1(data []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func (ptp *PlainTextPreprocessor) getFileTypeDescription(ext string) string {
	switch ext {
	case ".csv":
		return "CSV Spreadsheet"
	case ".tsv":
		return "Tab Separated Values"
	case ".txt", ".text":
		return "Plain Text"
	default:
		return "Text"
	}
}
