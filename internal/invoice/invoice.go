// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package invoice holds the invoice document model, the partial projection
// produced by text interpretation, and the rules for merging one into the
// other.
package invoice

import (
	"github.com/shopspring/decimal"
)

// GSTTreatment distinguishes intra-state (CGST+SGST) from inter-state (IGST)
// supplies.
type GSTTreatment string

const (
	GSTIntraState GSTTreatment = "intra-state"
	GSTInterState GSTTreatment = "inter-state"
)

// Valid reports whether t is one of the known treatments.
func (t GSTTreatment) Valid() bool {
	return t == GSTIntraState || t == GSTInterState
}

// AddressBlock describes the issuing company or the billed client.
type AddressBlock struct {
	Name      string `json:"name" yaml:"name"`
	Address   string `json:"address" yaml:"address"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`
	AltPhone  string `json:"altPhone,omitempty" yaml:"altPhone,omitempty"`
	Website   string `json:"website,omitempty" yaml:"website,omitempty"`
	TaxID     string `json:"taxId,omitempty" yaml:"taxId,omitempty"`
	GSTIN     string `json:"gstin,omitempty" yaml:"gstin,omitempty"`
	State     string `json:"state,omitempty" yaml:"state,omitempty"`
	StateCode string `json:"stateCode,omitempty" yaml:"stateCode,omitempty"`
}

// LineItem is one billed row. Monetary values derived from it are never
// stored.
type LineItem struct {
	ID           string  `json:"id" yaml:"id"`
	Description  string  `json:"description" yaml:"description"`
	Quantity     float64 `json:"quantity" yaml:"quantity"`
	Rate         float64 `json:"rate" yaml:"rate"`
	TaxPercent   float64 `json:"taxPercent" yaml:"taxPercent"`
	HSNSAC       string  `json:"hsnSac,omitempty" yaml:"hsnSac,omitempty"`
	SerialNumber string  `json:"serialNumber,omitempty" yaml:"serialNumber,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// TaxableValue is quantity × rate.
func (li LineItem) TaxableValue() decimal.Decimal {
	return decimal.NewFromFloat(li.Quantity).Mul(decimal.NewFromFloat(li.Rate))
}

// TaxAmount is the taxable value × taxPercent / 100.
func (li LineItem) TaxAmount() decimal.Decimal {
	return li.TaxableValue().Mul(decimal.NewFromFloat(li.TaxPercent)).Div(hundred)
}

// LineTotal is the taxable value plus tax.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.TaxableValue().Add(li.TaxAmount())
}

// Charges are invoice level additions on top of the line items.
type Charges struct {
	Shipping float64 `json:"shipping" yaml:"shipping"`
	Wrapping float64 `json:"wrapping" yaml:"wrapping"`
	Donation float64 `json:"donation" yaml:"donation"`
}

// Total sums all charges.
func (c Charges) Total() decimal.Decimal {
	return decimal.NewFromFloat(c.Shipping).
		Add(decimal.NewFromFloat(c.Wrapping)).
		Add(decimal.NewFromFloat(c.Donation))
}

// Invoice is the document being edited. Dates are ISO YYYY-MM-DD strings and
// Currency is an ISO 4217 code.
type Invoice struct {
	Title          string       `json:"title" yaml:"title"`
	InvoiceNumber  string       `json:"invoiceNumber" yaml:"invoiceNumber"`
	IssueDate      string       `json:"issueDate" yaml:"issueDate"`
	DueDate        string       `json:"dueDate" yaml:"dueDate"`
	Currency       string       `json:"currency" yaml:"currency"`
	Company        AddressBlock `json:"company" yaml:"company"`
	Client         AddressBlock `json:"client" yaml:"client"`
	Notes          string       `json:"notes" yaml:"notes"`
	Terms          string       `json:"terms" yaml:"terms"`
	LineItems      []LineItem   `json:"lineItems" yaml:"lineItems"`
	GSTTreatment   GSTTreatment `json:"gstTreatment,omitempty" yaml:"gstTreatment,omitempty"`
	PlaceOfSupply  string       `json:"placeOfSupply,omitempty" yaml:"placeOfSupply,omitempty"`
	EwayBill       string       `json:"ewayBill,omitempty" yaml:"ewayBill,omitempty"`
	IRN            string       `json:"irn,omitempty" yaml:"irn,omitempty"`
	PaymentSummary string       `json:"paymentSummary,omitempty" yaml:"paymentSummary,omitempty"`
	AmountInWords  string       `json:"amountInWords,omitempty" yaml:"amountInWords,omitempty"`
	Charges        Charges      `json:"charges" yaml:"charges"`
}

// New returns an empty invoice in the given currency.
func New(currency string) Invoice {
	return Invoice{Currency: currency, LineItems: []LineItem{}}
}

// Totals are the derived sums of an invoice.
type Totals struct {
	Taxable decimal.Decimal
	Tax     decimal.Decimal
	Charges decimal.Decimal
	Grand   decimal.Decimal
}

// Totals sums the line items and charges.
func (inv Invoice) Totals() Totals {
	t := Totals{Taxable: decimal.Zero, Tax: decimal.Zero}
	for _, li := range inv.LineItems {
		t.Taxable = t.Taxable.Add(li.TaxableValue())
		t.Tax = t.Tax.Add(li.TaxAmount())
	}
	t.Charges = inv.Charges.Total()
	t.Grand = t.Taxable.Add(t.Tax).Add(t.Charges)
	return t
}

// Clone returns a copy that shares no slices with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.LineItems = make([]LineItem, len(inv.LineItems))
	copy(out.LineItems, inv.LineItems)
	return out
}
