// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"invoice-architect/internal/core"
	"invoice-architect/internal/formatters"
	"invoice-architect/internal/invoice"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string][]color.Attribute
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string][]color.Attribute{
			"green":  {color.FgGreen},
			"yellow": {color.FgYellow},
			"cyan":   {color.FgCyan},
			"white":  {color.FgWhite, color.Bold},
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable invoice summary with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// MIMEType returns the content type served for this format
func (f *Formatter) MIMEType() string {
	return "text/plain; charset=utf-8"
}

func (f *Formatter) Format(result *core.ImportResult, options formatters.FormatterOptions) (string, error) {
	paint := func(name, s string) string {
		if options.NoColor {
			return s
		}
		// Colour is decided by the caller, not by color.NoColor.
		c := color.New(f.colors[name]...)
		c.EnableColor()
		return c.Sprint(s)
	}

	var b strings.Builder
	inv := result.Invoice

	title := "Invoice import"
	if options.Filename != "" {
		title += ": " + options.Filename
	}
	b.WriteString(paint("white", title) + "\n")
	if len(result.Fields) > 0 {
		fmt.Fprintf(&b, "%s %s\n", paint("green", "Recognised:"), strings.Join(result.Fields, ", "))
	}
	b.WriteString("\n")

	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-16s %s\n", label+":", value)
		}
	}
	field("Title", inv.Title)
	field("Invoice Number", inv.InvoiceNumber)
	field("Issue Date", inv.IssueDate)
	field("Due Date", inv.DueDate)
	field("Currency", inv.Currency)
	if inv.GSTTreatment != "" {
		field("GST Treatment", string(inv.GSTTreatment))
	}
	field("Place of Supply", inv.PlaceOfSupply)
	field("E-way Bill", inv.EwayBill)
	field("IRN", inv.IRN)

	f.writeParty(&b, paint("cyan", "From"), inv.Company)
	f.writeParty(&b, paint("cyan", "Bill To"), inv.Client)

	if len(inv.LineItems) > 0 {
		fmt.Fprintf(&b, "\n%s\n", paint("cyan", "Line Items"))
		fmt.Fprintf(&b, "  %-32s %10s %12s %7s %14s\n", "Description", "Qty", "Rate", "Tax %", "Total")
		for _, item := range inv.LineItems {
			fmt.Fprintf(&b, "  %-32s %10s %12s %7s %14s\n",
				truncate(item.Description, 32),
				trimFloat(item.Quantity),
				trimFloat(item.Rate),
				trimFloat(item.TaxPercent),
				item.LineTotal().StringFixed(2))
		}
	}

	totals := inv.Totals()
	fmt.Fprintf(&b, "\n%-16s %s %s\n", "Subtotal:", totals.Taxable.StringFixed(2), inv.Currency)
	fmt.Fprintf(&b, "%-16s %s %s\n", "Tax:", totals.Tax.StringFixed(2), inv.Currency)
	if !totals.Charges.IsZero() {
		fmt.Fprintf(&b, "%-16s %s %s\n", "Charges:", totals.Charges.StringFixed(2), inv.Currency)
	}
	fmt.Fprintf(&b, "%s %s %s\n", paint("white", fmt.Sprintf("%-16s", "Total:")), totals.Grand.StringFixed(2), inv.Currency)

	if inv.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", paint("cyan", "Notes"), inv.Notes)
	}
	if inv.Terms != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", paint("cyan", "Terms"), inv.Terms)
	}

	if options.Verbose {
		if a := result.Attachment; a != nil {
			fmt.Fprintf(&b, "\n%-16s %s (%d bytes, %s)\n", "Attachment:", a.Name, a.Size, a.MIMEType)
		}
		if len(result.Diagnostics) > 0 {
			fmt.Fprintf(&b, "\n%s\n", paint("yellow", "Diagnostics"))
			for _, d := range result.Diagnostics {
				fmt.Fprintf(&b, "  %s\n", d.String())
			}
		}
	}

	if options.ShowText && result.Text != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", paint("cyan", "Extracted Text"), result.Text)
	}

	return b.String(), nil
}

func (f *Formatter) writeParty(b *strings.Builder, heading string, a invoice.AddressBlock) {
	lines := []string{a.Name, a.Address, a.Email, a.Phone, a.AltPhone, a.Website}
	if a.TaxID != "" {
		lines = append(lines, "Tax ID: "+a.TaxID)
	}
	if a.GSTIN != "" {
		lines = append(lines, "GSTIN: "+a.GSTIN)
	}
	if a.State != "" || a.StateCode != "" {
		lines = append(lines, strings.TrimSpace("State: "+a.State+" "+a.StateCode))
	}

	var body []string
	for _, line := range lines {
		if line != "" {
			body = append(body, strings.ReplaceAll(line, "\n", "\n  "))
		}
	}
	if len(body) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n  %s\n", heading, strings.Join(body, "\n  "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
