// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"fmt"

	"invoice-architect/internal/observability"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
	textextractofficetextlib "invoice-architect/internal/preprocessors/text-extractors/text-extract-officetextlib"
	textextractpdftextlib "invoice-architect/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// TextOptions configures document text extraction.
type TextOptions struct {
	PDFEngine textextractpdftextlib.Engine
	Inflater  inflatelib.Inflater
	MaxPages  int
}

// TextPreprocessor handles text extraction from PDF and OOXML documents
type TextPreprocessor struct {
	name                string
	supportedExtensions []string
	extensions          *FileExtensionValidator
	opts                TextOptions
	observer            *observability.StandardObserver
}

// NewTextPreprocessor creates a new text preprocessor. A nil inflater
// selects the native decompressor.
func NewTextPreprocessor(opts TextOptions) *TextPreprocessor {
	if opts.Inflater == nil {
		opts.Inflater = inflatelib.NewNative(inflatelib.DefaultMaxOutput)
	}
	if opts.PDFEngine == "" {
		opts.PDFEngine = textextractpdftextlib.EngineScan
	}
	return &TextPreprocessor{
		name:                "Document Text Extractor",
		supportedExtensions: []string{".pdf", ".docx", ".xlsx", ".xls"},
		extensions:          NewFileExtensionValidator(),
		opts:                opts,
	}
}

// SetObserver sets the observability component
func (tp *TextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	tp.observer = observer
}

// GetName returns the name of this preprocessor
func (tp *TextPreprocessor) GetName() string {
	return tp.name
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (tp *TextPreprocessor) GetSupportedExtensions() []string {
	return tp.supportedExtensions
}

// CanProcess checks if this preprocessor can handle the given file
func (tp *TextPreprocessor) CanProcess(src Source) bool {
	ext := src.Ext()
	return tp.extensions.IsPDFFile(ext) || tp.extensions.IsOfficeFile(ext)
}

// Process extracts text content from the file. Damaged documents are not
// errors: whatever text survived is returned with diagnostics.
func (tp *TextPreprocessor) Process(ctx context.Context, src Source) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if tp.observer != nil {
		finishTiming = tp.observer.StartTiming("text_preprocessor", "process_file", src.Name)
		if tp.observer.DebugObserver != nil {
			finishStep = tp.observer.DebugObserver.StartStep("text_preprocessor", "process_file", src.Name)
		}
	}

	ext := src.Ext()

	content := &ProcessedContent{
		Filename:      src.Name,
		ProcessorType: tp.name,
	}

	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = NewExtractionError(src.Name, ErrorTypeCancelled, "import cancelled", ctxErr)
	} else {
		switch {
		case tp.extensions.IsPDFFile(ext):
			tp.processPDF(src, content)
		case tp.extensions.IsOfficeFile(ext):
			err = tp.processOffice(src, ext, content)
		default:
			err = NewExtractionError(src.Name, ErrorTypeUnsupportedFormat, ErrUnsupportedFileType.Error(), ErrUnsupportedFileType)
		}
	}
	if err != nil {
		content.Error = err
	}

	if tp.observer != nil {
		tp.observer.LogDiagnostics("text_preprocessor", content.Diagnostics)
	}

	if finishTiming != nil {
		metadata := map[string]interface{}{
			"file_ext":    ext,
			"diagnostics": len(content.Diagnostics),
		}
		if content.Success {
			metadata["word_count"] = content.WordCount
			metadata["char_count"] = content.CharCount
			metadata["line_count"] = content.LineCount
		}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
	}
	if finishStep != nil {
		if err != nil {
			finishStep(false, fmt.Sprintf("Failed to extract text: %v", err))
		} else {
			finishStep(true, fmt.Sprintf("Extracted text: %d words, %d lines, %d diagnostics",
				content.WordCount, content.LineCount, len(content.Diagnostics)))
		}
	}

	return content, err
}

// processPDF extracts text from PDF documents
func (tp *TextPreprocessor) processPDF(src Source, content *ProcessedContent) {
	pdfContent, diags := textextractpdftextlib.ExtractText(src.Data, textextractpdftextlib.Options{
		Engine:   tp.opts.PDFEngine,
		Inflater: tp.opts.Inflater,
		MaxPages: tp.opts.MaxPages,
	})
	content.Diagnostics = append(content.Diagnostics, diags...)

	content.Text = pdfContent.Text
	content.Format = "PDF Document"
	content.Engine = string(pdfContent.Engine)
	content.PageCount = pdfContent.PageCount
	content.WordCount = pdfContent.WordCount
	content.CharCount = pdfContent.CharCount
	content.LineCount = pdfContent.LineCount
	content.Paragraphs = CountParagraphs(pdfContent.Text)
	content.Success = true
}

// processOffice extracts text from DOCX and spreadsheet documents
func (tp *TextPreprocessor) processOffice(src Source, ext string, content *ProcessedContent) error {
	officeContent, diags, err := textextractofficetextlib.ExtractText(src.Data, ext, tp.opts.Inflater)
	content.Diagnostics = append(content.Diagnostics, diags...)
	if err != nil {
		return NewExtractionError(src.Name, ErrorTypeExtractionFailed, "failed to extract text from document", err)
	}

	content.Text = officeContent.Text
	content.Format = officeContent.Format
	content.PageCount = officeContent.PageCount
	content.WordCount = officeContent.WordCount
	content.CharCount = officeContent.CharCount
	content.LineCount = officeContent.LineCount
	content.Paragraphs = officeContent.Paragraphs
	content.Success = true
	return nil
}
