// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"invoice-architect/internal/core"
	"invoice-architect/internal/diagnostic"
	"invoice-architect/internal/formatters"
	_ "invoice-architect/internal/formatters/csv"
	_ "invoice-architect/internal/formatters/json"
	"invoice-architect/internal/formatters/shared"
	_ "invoice-architect/internal/formatters/text"
	_ "invoice-architect/internal/formatters/yaml"
	"invoice-architect/internal/invoice"
)

func sampleResult() *core.ImportResult {
	inv := invoice.New("EUR")
	inv.InvoiceNumber = "INV-9"
	inv.Client.Name = "Acme, Inc."
	inv.LineItems = []invoice.LineItem{
		{ID: "a", Description: "Widget, large", Quantity: 2, Rate: 10, TaxPercent: 10},
		{ID: "b", Description: "Setup", Quantity: 1, Rate: 7.5},
	}
	att := invoice.NewAttachment("inv.txt", "text/plain", []byte("hello"))

	var diags diagnostic.List
	diags.Add(diagnostic.StagePDF, "stream skipped", nil)

	return &core.ImportResult{
		Invoice:     inv,
		Fields:      []string{"invoiceNumber", "client", "lineItems"},
		Text:        "raw text",
		Attachment:  &att,
		Diagnostics: diags,
	}
}

func TestRegistryHasAllFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, formatters.List())
	assert.Equal(t, "text/csv", formatters.GetFormatInfo("csv").MimeType)
	assert.Empty(t, formatters.GetFormatInfo("sarif").Name)
	assert.Len(t, formatters.GetSupportedFormats(), 4)
}

func TestRegistryLookupAndDuplicates(t *testing.T) {
	f, ok := formatters.Get("JSON")
	require.True(t, ok)
	assert.Equal(t, "json", f.Name())

	r := formatters.NewRegistry()
	r.Register(f)
	assert.Panics(t, func() { r.Register(f) })
	assert.Equal(t, []string{"json"}, r.List())
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := formatters.Export("xml", sampleResult(), formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, text, yaml")
}

func TestJSONReport(t *testing.T) {
	out, err := formatters.Export("json", sampleResult(), formatters.FormatterOptions{Filename: "inv.txt"})
	require.NoError(t, err)

	var report shared.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "inv.txt", report.File)
	assert.Equal(t, "INV-9", report.Invoice.InvoiceNumber)
	assert.Equal(t, "27.50", report.Totals.Taxable)
	assert.Equal(t, "2.00", report.Totals.Tax)
	assert.Equal(t, "29.50", report.Totals.Grand)
	assert.Equal(t, []string{"[pdf] stream skipped"}, report.Diagnostics)
	require.NotNil(t, report.Attachment)
	assert.Empty(t, report.Attachment.DataURL)
	assert.Empty(t, report.Text)
}

func TestJSONVerboseAndCompact(t *testing.T) {
	out, err := formatters.Export("json", sampleResult(), formatters.FormatterOptions{Verbose: true, ShowText: true, Compact: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, `"dataUrl":"data:text/plain;base64,aGVsbG8="`)
	assert.Contains(t, out, `"text":"raw text"`)
}

func TestYAMLMatchesJSONStructure(t *testing.T) {
	out, err := formatters.Export("yaml", sampleResult(), formatters.FormatterOptions{})
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	totals, ok := doc["totals"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "29.50", totals["grand"])
}

func TestCSVLineItems(t *testing.T) {
	out, err := formatters.Export("csv", sampleResult(), formatters.FormatterOptions{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Description,HSN/SAC,Quantity,Rate,Tax %,Taxable Value,Tax Amount,Line Total", lines[0])
	assert.Equal(t, `"Widget, large",,2,10,10,20.00,2.00,22.00`, lines[1])
	assert.Equal(t, "Setup,,1,7.5,0,7.50,0.00,7.50", lines[2])

	verbose, err := formatters.Export("csv", sampleResult(), formatters.FormatterOptions{Verbose: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(verbose, "ID,Description"))
}

func TestTextSummary(t *testing.T) {
	out, err := formatters.Export("text", sampleResult(), formatters.FormatterOptions{NoColor: true, Verbose: true, Filename: "inv.txt"})
	require.NoError(t, err)
	assert.Contains(t, out, "Invoice import: inv.txt")
	assert.Contains(t, out, "Invoice Number:  INV-9")
	assert.Contains(t, out, "Acme, Inc.")
	assert.Contains(t, out, "Widget, large")
	assert.Contains(t, out, "29.50 EUR")
	assert.Contains(t, out, "[pdf] stream skipped")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextColor(t *testing.T) {
	out, err := formatters.Export("text", sampleResult(), formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}
