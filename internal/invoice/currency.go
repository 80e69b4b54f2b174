// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/currency"
)

// iso4217Codes is the active ISO 4217 list, including fund and metal codes.
var iso4217Codes = []string{
	"AED", "AFN", "ALL", "AMD", "ANG", "AOA", "ARS", "AUD", "AWG", "AZN",
	"BAM", "BBD", "BDT", "BGN", "BHD", "BIF", "BMD", "BND", "BOB", "BOV",
	"BRL", "BSD", "BTN", "BWP", "BYN", "BZD", "CAD", "CDF", "CHE", "CHF",
	"CHW", "CLF", "CLP", "CNY", "COP", "COU", "CRC", "CUC", "CUP", "CVE",
	"CZK", "DJF", "DKK", "DOP", "DZD", "EGP", "ERN", "ETB", "EUR", "FJD",
	"FKP", "GBP", "GEL", "GHS", "GIP", "GMD", "GNF", "GTQ", "GYD", "HKD",
	"HNL", "HRK", "HTG", "HUF", "IDR", "ILS", "INR", "IQD", "IRR", "ISK",
	"JMD", "JOD", "JPY", "KES", "KGS", "KHR", "KMF", "KPW", "KRW", "KWD",
	"KYD", "KZT", "LAK", "LBP", "LKR", "LRD", "LSL", "LYD", "MAD", "MDL",
	"MGA", "MKD", "MMK", "MNT", "MOP", "MRU", "MUR", "MVR", "MWK", "MXN",
	"MXV", "MYR", "MZN", "NAD", "NGN", "NIO", "NOK", "NPR", "NZD", "OMR",
	"PAB", "PEN", "PGK", "PHP", "PKR", "PLN", "PYG", "QAR", "RON", "RSD",
	"RUB", "RWF", "SAR", "SBD", "SCR", "SDG", "SEK", "SGD", "SHP", "SLE",
	"SLL", "SOS", "SRD", "SSP", "STN", "SVC", "SYP", "SZL", "THB", "TJS",
	"TMT", "TND", "TOP", "TRY", "TTD", "TWD", "TZS", "UAH", "UGX", "USD",
	"USN", "UYI", "UYU", "UYW", "UZS", "VED", "VES", "VND", "VUV", "WST",
	"XAF", "XAG", "XAU", "XBA", "XBB", "XBC", "XBD", "XCD", "XCG", "XDR",
	"XOF", "XPD", "XPF", "XPT", "XSU", "XTS", "XUA", "XXX", "YER", "ZAR",
	"ZMW", "ZWG", "ZWL",
}

// CurrencySet is an immutable set of upper-case ISO 4217 codes.
type CurrencySet struct {
	codes  map[string]struct{}
	sorted []string
}

// NewCurrencySet builds a set from codes, upper-casing each one.
func NewCurrencySet(codes ...string) *CurrencySet {
	s := &CurrencySet{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := s.codes[c]; ok {
			continue
		}
		s.codes[c] = struct{}{}
		s.sorted = append(s.sorted, c)
	}
	sort.Strings(s.sorted)
	return s
}

var defaultCurrencies = sync.OnceValue(func() *CurrencySet {
	return NewCurrencySet(iso4217Codes...)
})

// DefaultCurrencies returns the shared ISO 4217 set.
func DefaultCurrencies() *CurrencySet {
	return defaultCurrencies()
}

// With returns a new set holding s plus extra. Every extra code must be a
// currency known to the CLDR tables.
func (s *CurrencySet) With(extra ...string) (*CurrencySet, error) {
	all := append([]string{}, s.sorted...)
	for _, code := range extra {
		unit, err := currency.ParseISO(strings.TrimSpace(code))
		if err != nil {
			return nil, fmt.Errorf("unknown currency code %q: %w", code, err)
		}
		all = append(all, unit.String())
	}
	return NewCurrencySet(all...), nil
}

// Contains reports whether code is in the set. The match is exact, so
// lower-case input is not a member.
func (s *CurrencySet) Contains(code string) bool {
	if s == nil {
		return false
	}
	_, ok := s.codes[code]
	return ok
}

// Codes returns the codes in ascending order.
func (s *CurrencySet) Codes() []string {
	return append([]string(nil), s.sorted...)
}

// Len is the number of codes.
func (s *CurrencySet) Len() int {
	return len(s.sorted)
}

// CurrencySymbol maps a printed symbol to its code.
type CurrencySymbol struct {
	Symbol string
	Code   string
}

// currencySymbols is searched in order; prefixed dollar forms come before
// the bare "$".
var currencySymbols = []CurrencySymbol{
	{"US$", "USD"},
	{"HK$", "HKD"},
	{"NZ$", "NZD"},
	{"A$", "AUD"},
	{"C$", "CAD"},
	{"S$", "SGD"},
	{"R$", "BRL"},
	{"Rs.", "INR"},
	{"₹", "INR"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₩", "KRW"},
	{"₽", "RUB"},
	{"₺", "TRY"},
	{"₫", "VND"},
	{"₱", "PHP"},
	{"₦", "NGN"},
	{"₪", "ILS"},
	{"฿", "THB"},
	{"₴", "UAH"},
	{"₸", "KZT"},
	{"$", "USD"},
}

// CurrencySymbols returns the symbol table in match order.
func CurrencySymbols() []CurrencySymbol {
	return append([]CurrencySymbol(nil), currencySymbols...)
}
