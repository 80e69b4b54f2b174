// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-architect/internal/invoice"
)

const gstInvoice = `TAX INVOICE
Invoice Number: INV-2024-001
Issue Date: 15/03/2024
Due Date: 14 April 2024
From:
Acme Traders
12 MG Road, Bengaluru
GSTIN: 29ABCDE1234F1Z5
State: Karnataka, State Code: 29
Phone: +91 98450 12345
Bill To:
Globex Retail
45 Park Street, Kolkata
GSTIN: 19FGHIJ5678K1Z2
Place of Supply: West Bengal
Description Qty Rate Tax Amount
Widget A   3   25.00   10%
Gadget B   2   100.00   18%
Subtotal 275.00
IGST 43.50
Total ₹318.50
Notes: Thank you for your business.

Terms: Payment within 30 days.`

func TestInterpretInvoiceNumber(t *testing.T) {
	got := New(Options{}).Interpret("Invoice Number: INV-2024-001")
	require.NotNil(t, got.InvoiceNumber)
	assert.Equal(t, "INV-2024-001", *got.InvoiceNumber)
}

func TestInterpretInvoiceNumberVariants(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Invoice No.: A/24-25/0042", want: "A/24-25/0042"},
		{text: "INVOICE # 7781", want: "7781"},
		{text: "invoice number\nINV-9", want: "INV-9"},
		{text: "Invoice #\nDate: 2024-01-01\nInvoice No: 77", want: "77"},
	}
	in := New(Options{})
	for _, tt := range tests {
		got := in.Interpret(tt.text)
		require.NotNil(t, got.InvoiceNumber, tt.text)
		assert.Equal(t, tt.want, *got.InvoiceNumber, tt.text)
	}

	assert.Nil(t, in.Interpret("Invoice notes only").InvoiceNumber)
	assert.Nil(t, in.Interpret("Invoice #\nDate: 2024-01-01").InvoiceNumber)
}

func TestInterpretIssueDatePositionalRule(t *testing.T) {
	in := New(Options{})

	got := in.Interpret("Issue Date: 15/03/2024")
	require.NotNil(t, got.IssueDate)
	assert.Equal(t, "2024-03-15", *got.IssueDate)

	got = in.Interpret("Issue Date: 03/15/2024")
	require.NotNil(t, got.IssueDate)
	assert.Equal(t, "2024-15-03", *got.IssueDate)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "2024-03-15", want: "2024-03-15", ok: true},
		{in: "2024/3/5", want: "2024-03-05", ok: true},
		{in: "5-3-2024", want: "2024-03-05", ok: true},
		{in: "15.03.2024 Due Date: 14.04.2024", want: "2024-03-15", ok: true},
		{in: "14 April 2024", want: "2024-04-14", ok: true},
		{in: "March 15th, 2024", want: "2024-03-15", ok: true},
		{in: "15 MARCH 2024 (Friday)", want: "2024-03-15", ok: true},
		{in: "Mon, Jan 15, 2024", want: "2024-01-15", ok: true},
		{in: "30 days", ok: false},
		{in: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestInterpretUnparseableDueDateIsDropped(t *testing.T) {
	got := New(Options{}).Interpret("Payment due: upon receipt")
	assert.Nil(t, got.DueDate)
}

func TestInterpretLineItem(t *testing.T) {
	got := New(Options{}).Interpret("Widget A   3   25.00   10%")
	require.Len(t, got.LineItems, 1)

	item := got.LineItems[0]
	assert.Equal(t, "Widget A", item.Description)
	assert.Equal(t, 3.0, item.Quantity)
	assert.Equal(t, 25.0, item.Rate)
	assert.Equal(t, 10.0, item.TaxPercent)
	assert.Empty(t, item.ID)
	assert.Equal(t, "82.50", item.LineTotal().StringFixed(2))
}

func TestInterpretLineItemHeuristics(t *testing.T) {
	in := New(Options{})

	tests := []struct {
		name string
		line string
		want *invoice.LineItem
	}{
		{name: "thousands separator", line: "Server rack 2 1,250.00 2,500.00", want: &invoice.LineItem{Description: "Server rack", Quantity: 2, Rate: 1250}},
		{name: "zero rate from total", line: "Setup fee 2 0 50.00", want: &invoice.LineItem{Description: "Setup fee", Quantity: 2, Rate: 25}},
		{name: "description after numbers", line: "12 25.00 Consulting hours", want: &invoice.LineItem{Description: "Consulting hours", Quantity: 12, Rate: 25}},
		{name: "letters glued to digits are not numbers", line: "Model A2 5 9.99", want: &invoice.LineItem{Description: "Model A2", Quantity: 5, Rate: 9.99}},
		{name: "zero quantity", line: "Widget 0 25.00"},
		{name: "implausible quantity", line: "Widget 200000 25.00"},
		{name: "single number", line: "Widget 25.00"},
		{name: "stop word", line: "Total tax 3 25.00"},
		{name: "no letters", line: "3 25.00 75.00"},
		{name: "dates are not numbers", line: "Delivered on 15/03/2024 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.Interpret(tt.line)
			if tt.want == nil {
				assert.Empty(t, got.LineItems)
				return
			}
			require.Len(t, got.LineItems, 1)
			assert.Equal(t, *tt.want, got.LineItems[0])
		})
	}
}

func TestInterpretMaxQuantityOption(t *testing.T) {
	got := New(Options{MaxQuantity: 10}).Interpret("Bolts 50 0.10")
	assert.Empty(t, got.LineItems)
}

func TestInterpretCurrency(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts Options
		want *string
	}{
		{name: "rupee symbol", text: "Total ₹318.50", want: ptr("INR")},
		{name: "prefixed dollar before bare dollar", text: "Total A$ 10 and $5", want: ptr("AUD")},
		{name: "bare dollar", text: "Total $5", want: ptr("USD")},
		{name: "bare code", text: "Amount: 100 EUR", want: ptr("EUR")},
		{name: "lower case code ignored", text: "paid in eur", want: nil},
		{name: "symbol outside set falls back to code", text: "$ 5 EUR", opts: Options{Currencies: invoice.NewCurrencySet("EUR")}, want: ptr("EUR")},
		{name: "nothing", text: "no money here", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.opts).Interpret(tt.text)
			assert.Equal(t, tt.want, got.Currency)
		})
	}
}

func TestInterpretFullGSTInvoice(t *testing.T) {
	got := New(Options{}).Interpret(gstInvoice)

	assert.Equal(t, ptr("TAX INVOICE"), got.Title)
	assert.Equal(t, ptr("INV-2024-001"), got.InvoiceNumber)
	assert.Equal(t, ptr("2024-03-15"), got.IssueDate)
	assert.Equal(t, ptr("2024-04-14"), got.DueDate)
	assert.Equal(t, ptr("INR"), got.Currency)
	assert.Equal(t, ptr("Thank you for your business."), got.Notes)
	assert.Equal(t, ptr("Payment within 30 days."), got.Terms)
	assert.Equal(t, ptr(invoice.GSTInterState), got.GSTTreatment)
	assert.Equal(t, ptr("West Bengal"), got.PlaceOfSupply)

	require.NotNil(t, got.Company)
	assert.Equal(t, ptr("Acme Traders"), got.Company.Name)
	assert.Equal(t, ptr("12 MG Road, Bengaluru"), got.Company.Address)
	assert.Equal(t, ptr("29ABCDE1234F1Z5"), got.Company.GSTIN)
	assert.Equal(t, ptr("Karnataka"), got.Company.State)
	assert.Equal(t, ptr("29"), got.Company.StateCode)
	assert.Equal(t, ptr("+91 98450 12345"), got.Company.Phone)

	require.NotNil(t, got.Client)
	assert.Equal(t, ptr("Globex Retail"), got.Client.Name)
	assert.Equal(t, ptr("45 Park Street, Kolkata"), got.Client.Address)
	assert.Equal(t, ptr("19FGHIJ5678K1Z2"), got.Client.GSTIN)

	require.Len(t, got.LineItems, 2)
	assert.Equal(t, invoice.LineItem{Description: "Widget A", Quantity: 3, Rate: 25, TaxPercent: 10}, got.LineItems[0])
	assert.Equal(t, invoice.LineItem{Description: "Gadget B", Quantity: 2, Rate: 100, TaxPercent: 18}, got.LineItems[1])
}

func TestInterpretIsPure(t *testing.T) {
	in := New(Options{})
	assert.Equal(t, in.Interpret(gstInvoice), in.Interpret(gstInvoice))
}

func TestInterpretPartyContactLines(t *testing.T) {
	text := "Bill From: Northwind LLC\n" +
		"500 Market St\n" +
		"Seattle WA\n" +
		"billing@northwind.example\n" +
		"Tel: (206) 555-0100\n" +
		"+1 206 555 0199\n" +
		"www.northwind.example\n" +
		"Tax ID: 91-1234567\n" +
		"\n" +
		"Client:\n" +
		"Contoso\n" +
		"Ship To: Dock 4\n"

	got := New(Options{}).Interpret(text)

	require.NotNil(t, got.Company)
	assert.Equal(t, ptr("Northwind LLC"), got.Company.Name)
	assert.Equal(t, ptr("500 Market St\nSeattle WA"), got.Company.Address)
	assert.Equal(t, ptr("billing@northwind.example"), got.Company.Email)
	assert.Equal(t, ptr("(206) 555-0100"), got.Company.Phone)
	assert.Equal(t, ptr("+1 206 555 0199"), got.Company.AltPhone)
	assert.Equal(t, ptr("www.northwind.example"), got.Company.Website)
	assert.Equal(t, ptr("91-1234567"), got.Company.TaxID)

	require.NotNil(t, got.Client)
	assert.Equal(t, ptr("Contoso"), got.Client.Name)
	assert.Nil(t, got.Client.Address)
	assert.Nil(t, got.GSTTreatment)
	assert.Empty(t, got.LineItems)
}

func TestInterpretPANBecomesTaxID(t *testing.T) {
	text := "Seller:\nRaman & Sons\nPAN: ABCDE1234F\nBuyer:\nKumar Stores"
	got := New(Options{Extended: true}).Interpret(text)
	require.NotNil(t, got.Company)
	assert.Equal(t, ptr("Raman & Sons"), got.Company.Name)
	assert.Equal(t, ptr("ABCDE1234F"), got.Company.TaxID)
	assert.Nil(t, got.Company.Address)
	assert.Equal(t, ptr("Kumar Stores"), got.Client.Name)
}

func TestInterpretGSTTreatment(t *testing.T) {
	in := New(Options{})
	assert.Equal(t, ptr(invoice.GSTIntraState), in.Interpret("CGST 9%\nSGST 9%").GSTTreatment)
	assert.Equal(t, ptr(invoice.GSTInterState), in.Interpret("IGST 18%").GSTTreatment)
	assert.Nil(t, in.Interpret("CGST 9%").GSTTreatment)
}

func TestInterpretExtendedCharges(t *testing.T) {
	text := "GSTIN: 29ABCDE1234F1Z5\nShipping Charges: 50.00\nGift Wrapping: ₹ 20\nDonation 1,000"
	got := New(Options{}).Interpret(text)
	require.NotNil(t, got.Charges)
	assert.Equal(t, ptr(50.0), got.Charges.Shipping)
	assert.Equal(t, ptr(20.0), got.Charges.Wrapping)
	assert.Equal(t, ptr(1000.0), got.Charges.Donation)
	assert.Empty(t, got.LineItems)
}

func TestInterpretNothingRecognised(t *testing.T) {
	got := New(Options{}).Interpret("lorem ipsum dolor sit amet")
	assert.True(t, got.IsEmpty())
}

func TestInterpretPartyBlockSpansBlankLines(t *testing.T) {
	text := "From:\nAcme\n\n12 Road\n\nSuite 4\nBill To:\nBob\n\nFlat 2\nNotes: thanks"
	got := New(Options{}).Interpret(text)

	require.NotNil(t, got.Company)
	assert.Equal(t, ptr("Acme"), got.Company.Name)
	assert.Equal(t, ptr("12 Road\nSuite 4"), got.Company.Address)

	require.NotNil(t, got.Client)
	assert.Equal(t, ptr("Bob"), got.Client.Name)
	assert.Equal(t, ptr("Flat 2"), got.Client.Address)
}

func TestInterpretLongPartyBlock(t *testing.T) {
	text := "Seller:\nBig Co\nBuilding A\nFloor 3\nWing B\nTech Park\nRing Road\nDistrict 9\nMetro City\nNorth Region\nBuyer:\nSmall Co"
	got := New(Options{}).Interpret(text)

	require.NotNil(t, got.Company)
	assert.Equal(t, ptr("Building A\nFloor 3\nWing B\nTech Park\nRing Road\nDistrict 9\nMetro City\nNorth Region"), got.Company.Address)
	assert.Equal(t, ptr("Small Co"), got.Client.Name)
}

func TestInterpretPartyLinesAreNotLineItems(t *testing.T) {
	got := New(Options{}).Interpret("Bill To:\nJane Doe\nUnit 5 221 Baker Street\nSubtotal 10")

	require.NotNil(t, got.Client)
	assert.Equal(t, ptr("Jane Doe"), got.Client.Name)
	assert.Equal(t, ptr("Unit 5 221 Baker Street"), got.Client.Address)
	assert.Empty(t, got.LineItems)

	// The same line outside a party block is read as an item.
	got = New(Options{}).Interpret("Unit 5 221 Baker Street")
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, invoice.LineItem{Description: "Unit", Quantity: 5, Rate: 221}, got.LineItems[0])
}
