// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"strings"

	"invoice-architect/internal/invoice"
)

// findCurrency looks for a known symbol first, then for a bare upper-case
// code. Only codes in the configured set are returned.
func (in *Interpreter) findCurrency(text string) *string {
	for _, sym := range invoice.CurrencySymbols() {
		if strings.Contains(text, sym.Symbol) && in.currencies.Contains(sym.Code) {
			return ptr(sym.Code)
		}
	}
	for _, code := range in.currencyCode.FindAllString(text, -1) {
		if in.currencies.Contains(code) {
			return ptr(code)
		}
	}
	return nil
}
