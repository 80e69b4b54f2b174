// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package interpreter infers invoice fields from flat extracted text using a
// fixed battery of label and pattern heuristics.
package interpreter

import (
	"regexp"
	"strings"

	"invoice-architect/internal/invoice"
)

// DefaultMaxQuantity is the largest quantity accepted as a line item.
const DefaultMaxQuantity = 100000

// Options configure an Interpreter.
type Options struct {
	// Currencies restricts detected currency codes. Nil uses the ISO set.
	Currencies *invoice.CurrencySet

	// Extended enables the Indian GST heuristics. They are also enabled
	// for any text that carries GST markers.
	Extended bool

	// MaxQuantity rejects line items with a larger first number.
	MaxQuantity float64
}

// Interpreter holds the compiled heuristics. It has no mutable state and is
// safe for concurrent use.
type Interpreter struct {
	currencies  *invoice.CurrencySet
	extended    bool
	maxQuantity float64

	invoiceNumber *regexp.Regexp
	issueDate     *regexp.Regexp
	dueDate       *regexp.Regexp
	currencyCode  *regexp.Regexp
	notes         *regexp.Regexp
	terms         *regexp.Regexp
	gstMarker     *regexp.Regexp

	companyLabel *regexp.Regexp
	clientLabel  *regexp.Regexp
	shipLabel    *regexp.Regexp
	sectionEnd   *regexp.Regexp
	fieldLabel   *regexp.Regexp

	party partyPatterns

	placeOfSupply *regexp.Regexp
	ewayBill      *regexp.Regexp
	irn           *regexp.Regexp
	amountWords   *regexp.Regexp
	charges       map[string]*regexp.Regexp

	stopWords         *regexp.Regexp
	extendedStopWords *regexp.Regexp
	headerWords       *regexp.Regexp
}

// New compiles the heuristics.
func New(opts Options) *Interpreter {
	if opts.Currencies == nil {
		opts.Currencies = invoice.DefaultCurrencies()
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = DefaultMaxQuantity
	}

	return &Interpreter{
		currencies:  opts.Currencies,
		extended:    opts.Extended,
		maxQuantity: opts.MaxQuantity,

		invoiceNumber: regexp.MustCompile(`(?i)\binvoice\s*(?:number\b|num\b\.?|no\b\.?|#)\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-/]*)`),
		issueDate:     regexp.MustCompile(`(?i)\b(?:issue\s+date|invoice\s+date|date\s+of\s+issue)\s*[:\-]?\s*([^\n]+)`),
		dueDate:       regexp.MustCompile(`(?i)\b(?:due\s+date|payment\s+due)\s*[:\-]?\s*([^\n]+)`),
		currencyCode:  regexp.MustCompile(`\b[A-Z]{3}\b`),
		notes:         regexp.MustCompile(`(?is)(?:^|\n)[ \t]*notes?\b[ \t]*:?[ \t]*(.*?)(?:\n[ \t]*\n|$)`),
		terms:         regexp.MustCompile(`(?is)(?:^|\n)[ \t]*(?:payment\s+)?terms\b(?:\s*(?:&|and)\s*conditions)?[ \t]*:?[ \t]*(.*?)(?:\n[ \t]*\n|$)`),
		gstMarker:     regexp.MustCompile(`\b(?:GSTIN|CGST|SGST|IGST|UTGST)\b`),

		companyLabel: regexp.MustCompile(`(?i)^(?:bill(?:ed)?\s+from|from|seller|sold\s+by|supplier)(?:\s+(?:name|details))?\s*(?::\s*(.*)|$)`),
		clientLabel:  regexp.MustCompile(`(?i)^(?:bill(?:ed)?\s+to|client|buyer|customer)(?:\s+(?:name|details))?\s*(?::\s*(.*)|$)`),
		shipLabel:    regexp.MustCompile(`(?i)^ship(?:ped)?\s+to\b`),
		sectionEnd:   regexp.MustCompile(`(?i)^(?:notes?|(?:payment\s+)?terms|sub\s*-?\s*total|total)\b`),
		fieldLabel:   regexp.MustCompile(`(?i)^(?:invoice\s*(?:number\b|num\b|no\b|#|date\b)|issue\s+date\b|due\s+date\b|date\s+of\s+issue\b|payment\s+due\b)`),

		party: newPartyPatterns(),

		placeOfSupply: regexp.MustCompile(`(?i)\bplace\s+of\s+supply\s*[:\-]?\s*([^\n]+)`),
		ewayBill:      regexp.MustCompile(`(?i)\be-?\s?way\s*bill\s*(?:no\.?|number)?\s*[:\-]?\s*(\d{12})\b`),
		irn:           regexp.MustCompile(`(?i)\bIRN\s*(?:no\.?)?\s*[:\-]?\s*([0-9a-f]{64})\b`),
		amountWords:   regexp.MustCompile(`(?i)\b(?:amount|total)\s+(?:chargeable\s+)?in\s+words\s*[:\-]?\s*([^\n]+)`),
		charges: map[string]*regexp.Regexp{
			"shipping": regexp.MustCompile(`(?i)^(?:shipping|delivery|freight)(?:\s+charges?)?\s*[:\-]?\s*\D*?(\d[\d,]*(?:\.\d+)?)`),
			"wrapping": regexp.MustCompile(`(?i)^gift\s*wrap(?:ping)?(?:\s+charges?)?\s*[:\-]?\s*\D*?(\d[\d,]*(?:\.\d+)?)`),
			"donation": regexp.MustCompile(`(?i)^donation\s*[:\-]?\s*\D*?(\d[\d,]*(?:\.\d+)?)`),
		},

		stopWords:         regexp.MustCompile(`(?i)\b(?:invoice|sub\s*total|total|tax|amount\s+due|balance|bill\s+to|bill\s+from|notes?|terms|payment|due\s+date|issue\s+date)\b`),
		extendedStopWords: regexp.MustCompile(`(?i)\b(?:cgst|sgst|igst|utgst|gst|shipping|wrapping|donation)\b`),
		headerWords:       regexp.MustCompile(`(?i)\b(?:description|item|items|qty|quantity|rate|price|unit|amount|hsn|sac|particulars)\b`),
	}
}

// Interpret returns the fields it could infer from text. Fields it could
// not find are left nil. The result depends only on text.
func (in *Interpreter) Interpret(text string) *invoice.ImportedInvoice {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	extended := in.extended || in.gstMarker.MatchString(text)
	out := &invoice.ImportedInvoice{}

	out.Title = in.findTitle(lines)
	out.InvoiceNumber = in.findInvoiceNumber(text)
	out.IssueDate = in.findDate(in.issueDate, text)
	out.DueDate = in.findDate(in.dueDate, text)
	out.Currency = in.findCurrency(text)
	out.Notes = firstGroup(in.notes, text)
	out.Terms = firstGroup(in.terms, text)

	consumed := make([]bool, len(lines))
	out.Company = in.findParty(lines, consumed, in.companyLabel, extended)
	out.Client = in.findParty(lines, consumed, in.clientLabel, extended)

	if extended {
		in.interpretExtended(text, lines, out)
	}

	out.LineItems = in.findLineItems(lines, consumed, extended)
	return out
}

func (in *Interpreter) findTitle(lines []string) *string {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "invoice") {
			return ptr(line)
		}
	}
	return nil
}

// findInvoiceNumber skips a token followed by a colon: that is the next
// line's label, reached when the number itself is missing.
func (in *Interpreter) findInvoiceNumber(text string) *string {
	for _, m := range in.invoiceNumber.FindAllStringSubmatchIndex(text, -1) {
		rest := strings.TrimLeft(text[m[3]:], " \t")
		if strings.HasPrefix(rest, ":") {
			continue
		}
		return ptr(text[m[2]:m[3]])
	}
	return nil
}

func (in *Interpreter) interpretExtended(text string, lines []string, out *invoice.ImportedInvoice) {
	hasCGST := strings.Contains(text, "CGST")
	hasSGST := strings.Contains(text, "SGST") || strings.Contains(text, "UTGST")
	hasIGST := strings.Contains(text, "IGST")
	switch {
	case hasIGST && !hasCGST:
		out.GSTTreatment = ptr(invoice.GSTInterState)
	case hasCGST && hasSGST:
		out.GSTTreatment = ptr(invoice.GSTIntraState)
	}

	out.PlaceOfSupply = firstGroup(in.placeOfSupply, text)
	out.EwayBill = firstGroup(in.ewayBill, text)
	out.IRN = firstGroup(in.irn, text)
	out.AmountInWords = firstGroup(in.amountWords, text)

	var charges invoice.PartialCharges
	found := false
	for _, line := range lines {
		for name, re := range in.charges {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			v, ok := parseNumber(m[1])
			if !ok {
				continue
			}
			switch name {
			case "shipping":
				if charges.Shipping == nil {
					charges.Shipping = ptr(v)
				}
			case "wrapping":
				if charges.Wrapping == nil {
					charges.Wrapping = ptr(v)
				}
			case "donation":
				if charges.Donation == nil {
					charges.Donation = ptr(v)
				}
			}
			found = true
		}
	}
	if found {
		out.Charges = &charges
	}
}

// firstGroup returns the trimmed first capture of re in text, or nil when
// there is no match or the capture is blank.
func firstGroup(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil || len(m) < 2 {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return ptr(v)
}

func ptr[T any](v T) *T { return &v }
