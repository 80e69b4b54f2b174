// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"invoice-architect/internal/core"
	"invoice-architect/internal/formatters"
	"invoice-architect/internal/invoice"
)

// Report is the document written by the JSON and YAML formatters.
type Report struct {
	File        string                   `json:"file,omitempty" yaml:"file,omitempty"`
	Format      string                   `json:"format,omitempty" yaml:"format,omitempty"`
	Fields      []string                 `json:"fields" yaml:"fields"`
	Invoice     invoice.Invoice          `json:"invoice" yaml:"invoice"`
	Totals      ReportTotals             `json:"totals" yaml:"totals"`
	Imported    *invoice.ImportedInvoice `json:"imported,omitempty" yaml:"imported,omitempty"`
	Attachment  *ReportAttachment        `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Diagnostics []string                 `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Text        string                   `json:"text,omitempty" yaml:"text,omitempty"`
}

// ReportTotals holds the derived amounts as fixed two-decimal strings.
type ReportTotals struct {
	Taxable string `json:"taxable" yaml:"taxable"`
	Tax     string `json:"tax" yaml:"tax"`
	Charges string `json:"charges" yaml:"charges"`
	Grand   string `json:"grand" yaml:"grand"`
}

// ReportAttachment describes the stored upload. The data URL is only
// included in verbose output.
type ReportAttachment struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Size     int64  `json:"size" yaml:"size"`
	MIMEType string `json:"mimeType" yaml:"mimeType"`
	DataURL  string `json:"dataUrl,omitempty" yaml:"dataUrl,omitempty"`
}

// BuildReport converts an import result into the report document.
func BuildReport(result *core.ImportResult, options formatters.FormatterOptions) Report {
	totals := result.Invoice.Totals()
	report := Report{
		File:    options.Filename,
		Format:  result.Format,
		Fields:  result.Fields,
		Invoice: result.Invoice,
		Totals: ReportTotals{
			Taxable: totals.Taxable.StringFixed(2),
			Tax:     totals.Tax.StringFixed(2),
			Charges: totals.Charges.StringFixed(2),
			Grand:   totals.Grand.StringFixed(2),
		},
		Diagnostics: result.Diagnostics.Strings(),
	}
	if report.Fields == nil {
		report.Fields = []string{}
	}
	if options.Verbose {
		report.Imported = result.Imported
	}
	if options.ShowText {
		report.Text = result.Text
	}
	if a := result.Attachment; a != nil {
		report.Attachment = &ReportAttachment{ID: a.ID, Name: a.Name, Size: a.Size, MIMEType: a.MIMEType}
		if options.Verbose {
			report.Attachment.DataURL = a.DataURL
		}
	}
	return report
}
