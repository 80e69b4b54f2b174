// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"invoice-architect/internal/core"
	"invoice-architect/internal/formatters"
	"invoice-architect/internal/invoice"
)

// Formatter writes the merged line items, one row per item.
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Line items as comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

// MIMEType returns the content type served for this format
func (f *Formatter) MIMEType() string {
	return "text/csv"
}

func (f *Formatter) Format(result *core.ImportResult, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Description", "HSN/SAC", "Quantity", "Rate", "Tax %", "Taxable Value", "Tax Amount", "Line Total"}
	if options.Verbose {
		headers = append([]string{"ID"}, headers...)
		headers = append(headers, "Serial Number")
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, item := range result.Invoice.LineItems {
		if err := w.Write(f.createCSVRow(item, options)); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error formatting CSV: %w", err)
	}
	return sb.String(), nil
}

func (f *Formatter) createCSVRow(item invoice.LineItem, options formatters.FormatterOptions) []string {
	row := []string{
		item.Description,
		item.HSNSAC,
		formatNumber(item.Quantity),
		formatNumber(item.Rate),
		formatNumber(item.TaxPercent),
		item.TaxableValue().StringFixed(2),
		item.TaxAmount().StringFixed(2),
		item.LineTotal().StringFixed(2),
	}
	if options.Verbose {
		row = append([]string{item.ID}, row...)
		row = append(row, item.SerialNumber)
	}
	return row
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
