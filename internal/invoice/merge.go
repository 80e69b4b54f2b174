// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"strings"

	"github.com/google/uuid"
)

// NewLineItemID returns a fresh random line item id.
func NewLineItemID() string {
	return uuid.NewString()
}

// MergeOptions tune Merge. Zero values use DefaultCurrencies and
// NewLineItemID.
type MergeOptions struct {
	Currencies *CurrencySet
	NewID      func() string
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func setString(dst *string, src *string) {
	if present(src) {
		*dst = strings.TrimSpace(*src)
	}
}

// Merge applies imp on top of current and returns the result. current is
// not modified.
//
// Only present, non-empty fields replace values. A non-empty LineItems
// slice replaces the items wholesale, with fresh ids for items that have
// none. Currency is taken only when it is in the configured set.
func Merge(current Invoice, imp *ImportedInvoice, opts MergeOptions) Invoice {
	out := current.Clone()
	if imp == nil {
		return out
	}
	if opts.Currencies == nil {
		opts.Currencies = DefaultCurrencies()
	}
	if opts.NewID == nil {
		opts.NewID = NewLineItemID
	}

	setString(&out.Title, imp.Title)
	setString(&out.InvoiceNumber, imp.InvoiceNumber)
	setString(&out.IssueDate, imp.IssueDate)
	setString(&out.DueDate, imp.DueDate)
	setString(&out.Notes, imp.Notes)
	setString(&out.Terms, imp.Terms)
	setString(&out.PlaceOfSupply, imp.PlaceOfSupply)
	setString(&out.EwayBill, imp.EwayBill)
	setString(&out.IRN, imp.IRN)
	setString(&out.PaymentSummary, imp.PaymentSummary)
	setString(&out.AmountInWords, imp.AmountInWords)

	if present(imp.Currency) {
		code := strings.ToUpper(strings.TrimSpace(*imp.Currency))
		if opts.Currencies.Contains(code) {
			out.Currency = code
		}
	}

	mergeAddress(&out.Company, imp.Company)
	mergeAddress(&out.Client, imp.Client)

	if imp.GSTTreatment != nil && imp.GSTTreatment.Valid() {
		out.GSTTreatment = *imp.GSTTreatment
	}

	if imp.Charges != nil {
		mergeAmount(&out.Charges.Shipping, imp.Charges.Shipping)
		mergeAmount(&out.Charges.Wrapping, imp.Charges.Wrapping)
		mergeAmount(&out.Charges.Donation, imp.Charges.Donation)
	}

	if len(imp.LineItems) > 0 {
		items := make([]LineItem, len(imp.LineItems))
		for i, li := range imp.LineItems {
			if strings.TrimSpace(li.ID) == "" {
				li.ID = opts.NewID()
			}
			items[i] = li
		}
		out.LineItems = items
	}
	return out
}

func mergeAddress(dst *AddressBlock, src *PartialAddress) {
	if src == nil {
		return
	}
	setString(&dst.Name, src.Name)
	setString(&dst.Address, src.Address)
	setString(&dst.Email, src.Email)
	setString(&dst.Phone, src.Phone)
	setString(&dst.AltPhone, src.AltPhone)
	setString(&dst.Website, src.Website)
	setString(&dst.TaxID, src.TaxID)
	setString(&dst.GSTIN, src.GSTIN)
	setString(&dst.State, src.State)
	setString(&dst.StateCode, src.StateCode)
}

func mergeAmount(dst *float64, src *float64) {
	if src != nil && *src >= 0 {
		*dst = *src
	}
}
