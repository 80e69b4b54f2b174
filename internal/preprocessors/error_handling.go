// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFileType is the only hard failure of text extraction. The
// message is shown to users as is.
//
//nolint:staticcheck // user-facing message
var ErrUnsupportedFileType = errors.New("Unsupported file type.")

// ErrFileTooLarge is returned when a file exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrorType represents different types of processing errors
type ErrorType string

const (
	ErrorTypeFileSize          ErrorType = "file_size"
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeExtractionFailed  ErrorType = "extraction_failed"
	ErrorTypeEmptyExtraction   ErrorType = "empty_extraction"
	ErrorTypeNotInterpreted    ErrorType = "not_interpreted"
	ErrorTypeCancelled         ErrorType = "cancelled"
	ErrorTypeUnknown           ErrorType = "unknown"
)

// ExtractionError describes why an import could not produce an invoice.
type ExtractionError struct {
	Filename string
	Type     ErrorType
	Message  string
	Cause    error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("import failed for %s", e.Filename))
	parts = append(parts, fmt.Sprintf("error=%s", e.Type))

	if e.Message != "" {
		parts = append(parts, fmt.Sprintf("message=%s", e.Message))
	}

	if e.Cause != nil && (e.Message == "" || e.Cause.Error() != e.Message) {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying error
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to a person importing the file.
func (e *ExtractionError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Type)
}

// NewExtractionError creates a new extraction error
func NewExtractionError(filename string, errorType ErrorType, message string, cause error) *ExtractionError {
	return &ExtractionError{
		Filename: filename,
		Type:     errorType,
		Message:  message,
		Cause:    cause,
	}
}

// ClassifyError returns the ErrorType of err.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.Type
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeCancelled
	case errors.Is(err, ErrUnsupportedFileType):
		return ErrorTypeUnsupportedFormat
	case errors.Is(err, ErrFileTooLarge):
		return ErrorTypeFileSize
	}
	return ErrorTypeUnknown
}
