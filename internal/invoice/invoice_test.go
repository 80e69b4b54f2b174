// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestLineItemTotals(t *testing.T) {
	li := LineItem{Description: "Widget A", Quantity: 3, Rate: 25, TaxPercent: 10}
	assert.True(t, li.TaxableValue().Equal(decimal.NewFromInt(75)))
	assert.True(t, li.TaxAmount().Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, "82.50", li.LineTotal().StringFixed(2))
}

func TestInvoiceTotals(t *testing.T) {
	inv := New("USD")
	inv.LineItems = []LineItem{
		{Quantity: 3, Rate: 25, TaxPercent: 10},
		{Quantity: 1, Rate: 0.1, TaxPercent: 0},
		{Quantity: 2, Rate: 0.1, TaxPercent: 0},
	}
	inv.Charges = Charges{Shipping: 5, Donation: 1.25}

	totals := inv.Totals()
	assert.Equal(t, "75.30", totals.Taxable.StringFixed(2))
	assert.Equal(t, "7.50", totals.Tax.StringFixed(2))
	assert.Equal(t, "6.25", totals.Charges.StringFixed(2))
	assert.Equal(t, "89.05", totals.Grand.StringFixed(2))
}

func TestCurrencySet(t *testing.T) {
	set := DefaultCurrencies()
	assert.True(t, set.Contains("INR"))
	assert.True(t, set.Contains("USD"))
	assert.False(t, set.Contains("usd"))
	assert.False(t, set.Contains("ABC"))
	assert.Same(t, set, DefaultCurrencies())

	codes := set.Codes()
	assert.True(t, len(codes) > 150)
	assert.IsIncreasing(t, codes)

	codes[0] = "ZZZ"
	assert.NotEqual(t, "ZZZ", set.Codes()[0])
}

func TestCurrencySetWith(t *testing.T) {
	base := NewCurrencySet("usd", " EUR ", "USD", "")
	assert.Equal(t, []string{"EUR", "USD"}, base.Codes())

	extended, err := base.With("CHF")
	require.NoError(t, err)
	assert.True(t, extended.Contains("CHF"))
	assert.False(t, base.Contains("CHF"))

	_, err = base.With("NOPE")
	assert.Error(t, err)
}

func TestCurrencySymbolsPreferLongerDollarForms(t *testing.T) {
	symbols := CurrencySymbols()
	bare := -1
	for i, s := range symbols {
		if s.Symbol == "$" {
			bare = i
		}
	}
	require.NotEqual(t, -1, bare)
	for i, s := range symbols {
		if strings.HasSuffix(s.Symbol, "$") && s.Symbol != "$" {
			assert.Less(t, i, bare, s.Symbol)
		}
	}
}

func TestImportedInvoiceFields(t *testing.T) {
	var nilImport *ImportedInvoice
	assert.True(t, nilImport.IsEmpty())

	imp := &ImportedInvoice{
		Title:   ptr("  "),
		Company: &PartialAddress{},
		Client:  &PartialAddress{Name: ptr("Acme")},
	}
	assert.Equal(t, []string{"client"}, imp.Fields())
	assert.False(t, imp.IsEmpty())

	assert.True(t, (&ImportedInvoice{GSTTreatment: ptr(GSTTreatment("other"))}).IsEmpty())
}

func TestMergeOnlyPresentFields(t *testing.T) {
	current := New("USD")
	current.Title = "Old title"
	current.Notes = "keep me"
	current.Company = AddressBlock{Name: "Me Ltd", Address: "1 Street", Email: "me@example.com"}
	current.LineItems = []LineItem{{ID: "existing", Description: "Old", Quantity: 1, Rate: 1}}

	imp := &ImportedInvoice{
		Title:         ptr("INVOICE"),
		InvoiceNumber: ptr(" INV-2024-001 "),
		Notes:         ptr(""),
		Company:       &PartialAddress{Name: ptr("New Name"), Email: ptr("")},
	}

	got := Merge(current, imp, MergeOptions{})
	assert.Equal(t, "INVOICE", got.Title)
	assert.Equal(t, "INV-2024-001", got.InvoiceNumber)
	assert.Equal(t, "keep me", got.Notes)
	assert.Equal(t, AddressBlock{Name: "New Name", Address: "1 Street", Email: "me@example.com"}, got.Company)
	assert.Equal(t, current.LineItems, got.LineItems)
	assert.Equal(t, "Old title", current.Title)
}

func TestMergeReplacesLineItemsWholesale(t *testing.T) {
	current := New("USD")
	current.LineItems = []LineItem{{ID: "a"}, {ID: "b"}}

	imp := &ImportedInvoice{LineItems: []LineItem{
		{Description: "Widget A", Quantity: 3, Rate: 25, TaxPercent: 10},
		{ID: "kept", Description: "Widget B", Quantity: 1, Rate: 5},
	}}

	got := Merge(current, imp, MergeOptions{NewID: sequentialIDs()})
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "id-1", got.LineItems[0].ID)
	assert.Equal(t, "kept", got.LineItems[1].ID)
	assert.Len(t, current.LineItems, 2)

	got = Merge(current, &ImportedInvoice{LineItems: []LineItem{{Description: "x"}}}, MergeOptions{})
	assert.NotEmpty(t, got.LineItems[0].ID)
}

func TestMergeCurrencyValidation(t *testing.T) {
	current := New("USD")

	tests := []struct {
		name string
		code *string
		want string
	}{
		{name: "valid", code: ptr("INR"), want: "INR"},
		{name: "lower case is normalised", code: ptr("eur"), want: "EUR"},
		{name: "unknown", code: ptr("ABC"), want: "USD"},
		{name: "absent", code: nil, want: "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(current, &ImportedInvoice{Currency: tt.code}, MergeOptions{})
			assert.Equal(t, tt.want, got.Currency)
		})
	}

	restricted := NewCurrencySet("EUR")
	got := Merge(current, &ImportedInvoice{Currency: ptr("INR")}, MergeOptions{Currencies: restricted})
	assert.Equal(t, "USD", got.Currency)
}

func TestMergeGSTAndCharges(t *testing.T) {
	current := New("INR")
	current.Charges.Shipping = 10

	imp := &ImportedInvoice{
		GSTTreatment: ptr(GSTInterState),
		Charges:      &PartialCharges{Wrapping: ptr(2.5), Donation: ptr(-1.0)},
	}
	got := Merge(current, imp, MergeOptions{})
	assert.Equal(t, GSTInterState, got.GSTTreatment)
	assert.Equal(t, Charges{Shipping: 10, Wrapping: 2.5}, got.Charges)

	got = Merge(got, &ImportedInvoice{GSTTreatment: ptr(GSTTreatment("bogus"))}, MergeOptions{})
	assert.Equal(t, GSTInterState, got.GSTTreatment)
}

func TestMergeNilImport(t *testing.T) {
	current := New("USD")
	current.Title = "Same"
	assert.Equal(t, current, Merge(current, nil, MergeOptions{}))
}

func TestAttachmentRoundTrip(t *testing.T) {
	a := NewAttachment("logo.png", "", []byte("png-bytes"))
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, int64(9), a.Size)
	assert.Equal(t, "application/octet-stream", a.MIMEType)
	assert.True(t, strings.HasPrefix(a.DataURL, "data:application/octet-stream;base64,"))

	data, err := a.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	_, err = Attachment{DataURL: "http://example.com/x"}.Bytes()
	assert.ErrorIs(t, err, ErrBadDataURL)
}

func TestTemplateExportAndRestoreKeepsIDs(t *testing.T) {
	inv := New("EUR")
	inv.Title = "Consulting"
	inv.Client = AddressBlock{Name: "Acme", Address: "2 Road"}
	inv.LineItems = []LineItem{{ID: "stored-1", Description: "Hours", Quantity: 10, Rate: 80}}
	att := NewAttachment("terms.txt", "text/plain", []byte("net 30"))

	var buf bytes.Buffer
	require.NoError(t, ExportTemplate(&buf, inv, "data:image/png;base64,AA==", []Attachment{att}))

	data, err := DecodeTemplate(&buf)
	require.NoError(t, err)
	assert.Equal(t, TemplateVersion, data.Version)
	assert.Equal(t, "data:image/png;base64,AA==", data.Logo)
	require.Len(t, data.Attachments, 1)
	assert.Equal(t, att, data.Attachments[0])

	restored := RestoreTemplate(New("USD"), data, MergeOptions{NewID: sequentialIDs()})
	assert.Equal(t, "Consulting", restored.Title)
	assert.Equal(t, "EUR", restored.Currency)
	assert.Equal(t, "Acme", restored.Client.Name)
	require.Len(t, restored.LineItems, 1)
	assert.Equal(t, "stored-1", restored.LineItems[0].ID)
}

func TestDecodeTemplateBareInvoice(t *testing.T) {
	data, err := DecodeTemplate(strings.NewReader(`{"title":"Bare","lineItems":[{"description":"x","quantity":1,"rate":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, data.Version)
	assert.Equal(t, []string{"title", "lineItems"}, data.Invoice.Fields())
}

func TestDecodeTemplateErrors(t *testing.T) {
	_, err := DecodeTemplate(strings.NewReader(`not json`))
	assert.Error(t, err)

	_, err = DecodeTemplate(strings.NewReader(`{"version":99,"invoice":{}}`))
	assert.Error(t, err)

	_, err = DecodeTemplate(strings.NewReader(`{"invoice":{"title":5}}`))
	assert.Error(t, err)
}
