// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoice-architect/internal/diagnostic"
	"invoice-architect/internal/interpreter"
	"invoice-architect/internal/invoice"
	"invoice-architect/internal/observability"
	"invoice-architect/internal/preprocessors"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
	textextractpdftextlib "invoice-architect/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// Import failures. Each one leaves the current invoice unchanged.
var (
	// ErrUnsupportedFileType is returned for files no extractor accepts.
	ErrUnsupportedFileType = preprocessors.ErrUnsupportedFileType

	// ErrEmptyExtraction is returned when a file yields no text at all.
	ErrEmptyExtraction = errors.New("couldn't read any details from this file")

	// ErrNotInterpreted is returned when text was read but no invoice
	// field was recognised.
	ErrNotInterpreted = errors.New("the file could not be interpreted automatically")
)

// Options configures an Importer. Zero values select defaults.
type Options struct {
	Currencies  *invoice.CurrencySet
	Extended    bool
	MaxQuantity float64

	PDFEngine      textextractpdftextlib.Engine
	MaxPages       int
	MaxInflateSize int64
	// Inflater overrides the native decompressor.
	Inflater inflatelib.Inflater

	// MaxFileSize rejects larger files before parsing. Zero disables it.
	MaxFileSize int64

	Observer *observability.StandardObserver
	// NewID assigns ids to imported line items.
	NewID func() string
}

// ImportResult holds the outcome of one import.
type ImportResult struct {
	Invoice     invoice.Invoice          `json:"invoice" yaml:"invoice"`
	Imported    *invoice.ImportedInvoice `json:"imported,omitempty" yaml:"imported,omitempty"`
	Fields      []string                 `json:"fields" yaml:"fields"`
	Text        string                   `json:"text,omitempty" yaml:"text,omitempty"`
	Format      string                   `json:"format,omitempty" yaml:"format,omitempty"`
	Attachment  *invoice.Attachment      `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Diagnostics diagnostic.List          `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Importer turns uploaded files into invoice updates. It holds no per-call
// state and may be shared between goroutines.
type Importer struct {
	manager     *preprocessors.PreprocessorManager
	interpreter *interpreter.Interpreter
	limits      *preprocessors.ResourceLimits
	merge       invoice.MergeOptions
	observer    *observability.StandardObserver
}

// NewImporter wires the extractors and the interpreter.
func NewImporter(opts Options) *Importer {
	if opts.Currencies == nil {
		opts.Currencies = invoice.DefaultCurrencies()
	}

	manager := BuildPreprocessorManager(opts)
	if opts.Observer != nil {
		manager.SetObserver(opts.Observer)
	}

	return &Importer{
		manager: manager,
		interpreter: interpreter.New(interpreter.Options{
			Currencies:  opts.Currencies,
			Extended:    opts.Extended,
			MaxQuantity: opts.MaxQuantity,
		}),
		limits:   &preprocessors.ResourceLimits{MaxFileSize: opts.MaxFileSize},
		merge:    invoice.MergeOptions{Currencies: opts.Currencies, NewID: opts.NewID},
		observer: opts.Observer,
	}
}

// SupportedExtensions lists the extensions the importer reads.
func (im *Importer) SupportedExtensions() []string {
	return im.manager.SupportedExtensions()
}

// CanImport reports whether some extractor accepts src.
func (im *Importer) CanImport(src preprocessors.Source) bool {
	return im.manager.GetPreprocessor(src) != nil
}

// Interpret runs only the text heuristics.
func (im *Importer) Interpret(text string) *invoice.ImportedInvoice {
	return im.interpreter.Interpret(text)
}

// ExtractTextFromFile returns the raw text of src. Damaged content is
// reported as diagnostics; only an unsupported type, an oversized file or
// cancellation is an error.
func (im *Importer) ExtractTextFromFile(ctx context.Context, src preprocessors.Source) (*preprocessors.ProcessedContent, error) {
	if err := im.limits.ValidateSize(src); err != nil {
		return nil, err
	}
	return im.manager.ProcessFile(ctx, src)
}

// Import extracts, interprets and merges src into current. On error the
// returned result carries current unchanged, along with any diagnostics
// gathered before the failure.
func (im *Importer) Import(ctx context.Context, src preprocessors.Source, current invoice.Invoice) (*ImportResult, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if im.observer != nil {
		finishTiming = im.observer.StartTiming("importer", "import", src.Name)
		if im.observer.DebugObserver != nil {
			finishStep = im.observer.DebugObserver.StartStep("importer", "import", src.Name)
		}
	}

	result := &ImportResult{Invoice: current.Clone()}
	err := im.run(ctx, src, current, result)

	if finishTiming != nil {
		metadata := map[string]interface{}{
			"fields":      len(result.Fields),
			"diagnostics": len(result.Diagnostics),
		}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
	}
	if finishStep != nil {
		if err != nil {
			finishStep(false, fmt.Sprintf("Import failed: %v", err))
		} else {
			finishStep(true, fmt.Sprintf("Imported %d fields: %s", len(result.Fields), strings.Join(result.Fields, ", ")))
		}
	}

	if err != nil {
		result.Invoice = current.Clone()
		return result, err
	}
	return result, nil
}

func (im *Importer) run(ctx context.Context, src preprocessors.Source, current invoice.Invoice, result *ImportResult) error {
	content, err := im.ExtractTextFromFile(ctx, src)
	if content != nil {
		result.Text = content.Text
		result.Format = content.Format
		result.Diagnostics = append(result.Diagnostics, content.Diagnostics...)
	}
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return preprocessors.NewExtractionError(src.Name, preprocessors.ErrorTypeCancelled, "import cancelled", err)
	}

	if strings.TrimSpace(content.Text) == "" {
		return preprocessors.NewExtractionError(src.Name, preprocessors.ErrorTypeEmptyExtraction, ErrEmptyExtraction.Error(), ErrEmptyExtraction)
	}

	imported := im.interpreter.Interpret(content.Text)
	result.Imported = imported
	result.Fields = imported.Fields()
	if len(result.Fields) == 0 {
		result.Diagnostics.Add(diagnostic.StageInterpret, "no invoice field recognised", nil)
		return preprocessors.NewExtractionError(src.Name, preprocessors.ErrorTypeNotInterpreted, ErrNotInterpreted.Error(), ErrNotInterpreted)
	}

	result.Invoice = invoice.Merge(current, imported, im.merge)
	attachment := invoice.NewAttachment(src.Name, src.MIMEType, src.Data)
	result.Attachment = &attachment
	return nil
}

// RestoreTemplate applies an exported template to current.
func (im *Importer) RestoreTemplate(current invoice.Invoice, data *invoice.TemplateData) invoice.Invoice {
	return invoice.RestoreTemplate(current, data, im.merge)
}
