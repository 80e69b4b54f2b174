// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"fmt"

	"invoice-architect/internal/core"
	"invoice-architect/internal/formatters"
	"invoice-architect/internal/formatters/shared"

	"gopkg.in/yaml.v3"
)

// Formatter implements YAML output formatting
type Formatter struct{}

// NewFormatter creates a new YAML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML output with the same structure as JSON"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

// MIMEType returns the content type served for this format
func (f *Formatter) MIMEType() string {
	return "application/x-yaml"
}

func (f *Formatter) Format(result *core.ImportResult, options formatters.FormatterOptions) (string, error) {
	yamlData, err := yaml.Marshal(shared.BuildReport(result, options))
	if err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	return string(yamlData), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
