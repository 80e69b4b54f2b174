// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"strings"
)

// FileExtensionValidator groups the extensions the import pipeline knows.
type FileExtensionValidator struct {
	pdfExtensions        map[string]bool
	officeExtensions     map[string]bool
	textExtensions       map[string]bool
	executableExtensions map[string]bool
}

// NewFileExtensionValidator creates a new file extension validator
func NewFileExtensionValidator() *FileExtensionValidator {
	return &FileExtensionValidator{
		pdfExtensions: map[string]bool{
			".pdf": true,
		},
		officeExtensions: map[string]bool{
			".docx": true,
			".xlsx": true,
			".xls":  true,
		},
		textExtensions: map[string]bool{
			".csv":  true,
			".tsv":  true,
			".txt":  true,
			".text": true,
		},
		// Never treated as text even when the client claims text/*.
		executableExtensions: map[string]bool{
			".exe": true,
			".dll": true,
			".so":  true,
			".bin": true,
			".msi": true,
			".com": true,
			".bat": true,
			".cmd": true,
			".sh":  true,
		},
	}
}

// IsPDFFile reports a PDF extension.
func (fev *FileExtensionValidator) IsPDFFile(ext string) bool {
	return fev.pdfExtensions[strings.ToLower(ext)]
}

// IsOfficeFile reports a DOCX or spreadsheet extension.
func (fev *FileExtensionValidator) IsOfficeFile(ext string) bool {
	return fev.officeExtensions[strings.ToLower(ext)]
}

// IsTextFile reports a CSV or plain text extension.
func (fev *FileExtensionValidator) IsTextFile(ext string) bool {
	return fev.textExtensions[strings.ToLower(ext)]
}

// IsExecutableFile reports an extension that is never imported.
func (fev *FileExtensionValidator) IsExecutableFile(ext string) bool {
	return fev.executableExtensions[strings.ToLower(ext)]
}

// IsTextMIMEType reports a text/* media type, parameters ignored.
func IsTextMIMEType(mimeType string) bool {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(base)), "text/")
}

// CalculateTextMetrics calculates word count, character count, and line count for text
func CalculateTextMetrics(text string) (wordCount, charCount, lineCount int) {
	if text == "" {
		return 0, 0, 0
	}
	wordCount = len(strings.Fields(text))
	charCount = len(text)
	lineCount = strings.Count(text, "\n") + 1
	return
}

// CountParagraphs counts blocks of text separated by blank lines.
func CountParagraphs(text string) int {
	paragraphs := 0
	inParagraph := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			inParagraph = false
			continue
		}
		if !inParagraph {
			paragraphs++
			inParagraph = true
		}
	}
	return paragraphs
}
