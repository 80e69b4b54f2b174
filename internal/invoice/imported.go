// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

// PartialAddress is an AddressBlock where every field may be absent.
type PartialAddress struct {
	Name      *string `json:"name,omitempty" yaml:"name,omitempty"`
	Address   *string `json:"address,omitempty" yaml:"address,omitempty"`
	Email     *string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     *string `json:"phone,omitempty" yaml:"phone,omitempty"`
	AltPhone  *string `json:"altPhone,omitempty" yaml:"altPhone,omitempty"`
	Website   *string `json:"website,omitempty" yaml:"website,omitempty"`
	TaxID     *string `json:"taxId,omitempty" yaml:"taxId,omitempty"`
	GSTIN     *string `json:"gstin,omitempty" yaml:"gstin,omitempty"`
	State     *string `json:"state,omitempty" yaml:"state,omitempty"`
	StateCode *string `json:"stateCode,omitempty" yaml:"stateCode,omitempty"`
}

func (p *PartialAddress) fields() []*string {
	return []*string{p.Name, p.Address, p.Email, p.Phone, p.AltPhone, p.Website, p.TaxID, p.GSTIN, p.State, p.StateCode}
}

// IsEmpty reports that no field carries a value.
func (p *PartialAddress) IsEmpty() bool {
	if p == nil {
		return true
	}
	for _, f := range p.fields() {
		if present(f) {
			return false
		}
	}
	return true
}

// PartialCharges is Charges where every amount may be absent.
type PartialCharges struct {
	Shipping *float64 `json:"shipping,omitempty" yaml:"shipping,omitempty"`
	Wrapping *float64 `json:"wrapping,omitempty" yaml:"wrapping,omitempty"`
	Donation *float64 `json:"donation,omitempty" yaml:"donation,omitempty"`
}

// ImportedInvoice is the partial projection of an Invoice recovered from a
// file or a template. A nil field was not recognised; a nil or empty
// LineItems slice leaves the current items alone.
type ImportedInvoice struct {
	Title          *string         `json:"title,omitempty" yaml:"title,omitempty"`
	InvoiceNumber  *string         `json:"invoiceNumber,omitempty" yaml:"invoiceNumber,omitempty"`
	IssueDate      *string         `json:"issueDate,omitempty" yaml:"issueDate,omitempty"`
	DueDate        *string         `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Currency       *string         `json:"currency,omitempty" yaml:"currency,omitempty"`
	Company        *PartialAddress `json:"company,omitempty" yaml:"company,omitempty"`
	Client         *PartialAddress `json:"client,omitempty" yaml:"client,omitempty"`
	Notes          *string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Terms          *string         `json:"terms,omitempty" yaml:"terms,omitempty"`
	LineItems      []LineItem      `json:"lineItems,omitempty" yaml:"lineItems,omitempty"`
	GSTTreatment   *GSTTreatment   `json:"gstTreatment,omitempty" yaml:"gstTreatment,omitempty"`
	PlaceOfSupply  *string         `json:"placeOfSupply,omitempty" yaml:"placeOfSupply,omitempty"`
	EwayBill       *string         `json:"ewayBill,omitempty" yaml:"ewayBill,omitempty"`
	IRN            *string         `json:"irn,omitempty" yaml:"irn,omitempty"`
	PaymentSummary *string         `json:"paymentSummary,omitempty" yaml:"paymentSummary,omitempty"`
	AmountInWords  *string         `json:"amountInWords,omitempty" yaml:"amountInWords,omitempty"`
	Charges        *PartialCharges `json:"charges,omitempty" yaml:"charges,omitempty"`
}

// Fields lists the names of the recognised fields in declaration order.
func (p *ImportedInvoice) Fields() []string {
	if p == nil {
		return nil
	}
	var out []string
	add := func(name string, ok bool) {
		if ok {
			out = append(out, name)
		}
	}
	add("title", present(p.Title))
	add("invoiceNumber", present(p.InvoiceNumber))
	add("issueDate", present(p.IssueDate))
	add("dueDate", present(p.DueDate))
	add("currency", present(p.Currency))
	add("company", !p.Company.IsEmpty())
	add("client", !p.Client.IsEmpty())
	add("notes", present(p.Notes))
	add("terms", present(p.Terms))
	add("lineItems", len(p.LineItems) > 0)
	add("gstTreatment", p.GSTTreatment != nil && p.GSTTreatment.Valid())
	add("placeOfSupply", present(p.PlaceOfSupply))
	add("ewayBill", present(p.EwayBill))
	add("irn", present(p.IRN))
	add("paymentSummary", present(p.PaymentSummary))
	add("amountInWords", present(p.AmountInWords))
	add("charges", p.Charges != nil && (p.Charges.Shipping != nil || p.Charges.Wrapping != nil || p.Charges.Donation != nil))
	return out
}

// IsEmpty reports that nothing was recognised.
func (p *ImportedInvoice) IsEmpty() bool {
	return len(p.Fields()) == 0
}
