// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"invoice-architect/internal/diagnostic"
	"invoice-architect/internal/observability"
)

// Source is an uploaded file: its name, the MIME type reported for it and
// its bytes.
type Source struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Ext returns the lower-case extension of the file name, including the dot.
func (s Source) Ext() string {
	return strings.ToLower(filepath.Ext(s.Name))
}

// BaseMIMEType returns the MIME type without parameters, lower-cased.
func (s Source) BaseMIMEType() string {
	base, _, _ := strings.Cut(s.MIMEType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	Filename string

	// Extracted content
	Text string

	// Content metadata
	Format     string
	PageCount  int
	WordCount  int
	CharCount  int
	LineCount  int
	Paragraphs int

	// Processing information
	ProcessorType string
	Engine        string
	Success       bool
	Error         error

	// Diagnostics are recoverable problems met while extracting.
	Diagnostics diagnostic.List
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(src Source) bool

	// Process extracts content from the file
	Process(ctx context.Context, src Source) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// SetObserver hands observer to every registered preprocessor.
func (pm *PreprocessorManager) SetObserver(observer *observability.StandardObserver) {
	for _, p := range pm.preprocessors {
		p.SetObserver(observer)
	}
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(src Source) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(src) {
			return p
		}
	}
	return nil
}

// ProcessFile extracts text with the first preprocessor that accepts src.
// A file no preprocessor accepts fails with ErrUnsupportedFileType.
func (pm *PreprocessorManager) ProcessFile(ctx context.Context, src Source) (*ProcessedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewExtractionError(src.Name, ErrorTypeCancelled, "import cancelled", err)
	}

	p := pm.GetPreprocessor(src)
	if p == nil {
		return nil, NewExtractionError(src.Name, ErrorTypeUnsupportedFormat, ErrUnsupportedFileType.Error(), ErrUnsupportedFileType)
	}

	result, err := p.Process(ctx, src)
	if err != nil {
		return result, err
	}
	return result, nil
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// SupportedExtensions lists every extension some preprocessor accepts.
func (pm *PreprocessorManager) SupportedExtensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, p := range pm.preprocessors {
		for _, ext := range p.GetSupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	sort.Strings(exts)
	return exts
}
