// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"invoice-architect/internal/core"
	"invoice-architect/internal/formatters"
	"invoice-architect/internal/formatters/shared"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// MIMEType returns the content type served for this format
func (f *Formatter) MIMEType() string {
	return "application/json"
}

func (f *Formatter) Format(result *core.ImportResult, options formatters.FormatterOptions) (string, error) {
	report := shared.BuildReport(result, options)

	var jsonData []byte
	var err error
	if options.Compact {
		jsonData, err = json.Marshal(report)
	} else {
		jsonData, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}

	return string(jsonData), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
