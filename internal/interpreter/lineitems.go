// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"invoice-architect/internal/invoice"
)

var (
	percentToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	dateToken    = regexp.MustCompile(`\b\d{1,4}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)
	numberToken  = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)
)

// parsedItem is a line item plus whether the line carried a price-like
// value (a decimal number or a percentage).
type parsedItem struct {
	item   invoice.LineItem
	priced bool
}

// findLineItems applies the line item heuristic to every line that is not
// part of a party block and carries no stop word.
func (in *Interpreter) findLineItems(lines []string, consumed []bool, extended bool) []invoice.LineItem {
	var items []invoice.LineItem
	for i, line := range lines {
		if line == "" || consumed[i] || !hasLetter(line) {
			continue
		}
		if in.stopWords.MatchString(line) {
			continue
		}
		if extended && in.extendedStopWords.MatchString(line) {
			continue
		}
		if in.isTableHeader(line) {
			continue
		}
		if p, ok := in.parseLineItem(line); ok {
			items = append(items, p.item)
		}
	}
	return items
}

// parseLineItem reads one line as "description qty rate ... [total] [tax%]".
// The first number is the quantity, the second the rate and the last the
// total, which fills in a zero rate.
func (in *Interpreter) parseLineItem(line string) (parsedItem, bool) {
	var res parsedItem

	percents := percentToken.FindAllStringSubmatch(line, -1)
	if len(percents) > 0 {
		if v, ok := parseNumber(percents[len(percents)-1][1]); ok {
			res.item.TaxPercent = v
			res.priced = true
		}
	}

	work := percentToken.ReplaceAllStringFunc(line, blank)
	work = dateToken.ReplaceAllStringFunc(work, blank)

	var (
		nums  []float64
		first = -1
	)
	for _, loc := range numberToken.FindAllStringIndex(work, -1) {
		if loc[0] > 0 && isASCIILetter(work[loc[0]-1]) {
			continue
		}
		if loc[1] < len(work) && isASCIILetter(work[loc[1]]) {
			continue
		}
		tok := work[loc[0]:loc[1]]
		v, ok := parseNumber(tok)
		if !ok {
			continue
		}
		if first < 0 {
			first = loc[0]
		}
		if strings.Contains(tok, ".") {
			res.priced = true
		}
		nums = append(nums, v)
	}
	if len(nums) < 2 {
		return res, false
	}

	qty := nums[0]
	if qty <= 0 || qty > in.maxQuantity {
		return res, false
	}
	rate := nums[1]
	total := nums[len(nums)-1]
	if rate == 0 && total > 0 {
		rate = total / qty
	}

	desc := trimDescription(line[:first])
	if desc == "" {
		desc = lettersOnly(line)
	}
	if desc == "" {
		return res, false
	}

	res.item.Description = desc
	res.item.Quantity = qty
	res.item.Rate = rate
	return res, true
}

// isTableHeader reports a line naming at least two item table columns and
// carrying no digits.
func (in *Interpreter) isTableHeader(line string) bool {
	if countDigits(line) > 0 {
		return false
	}
	return len(in.headerWords.FindAllString(line, 3)) >= 2
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func blank(s string) string {
	return strings.Repeat(" ", len(s))
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func trimDescription(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		if r == ')' || r == ']' {
			return false
		}
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// lettersOnly drops every character that is not a letter or a space.
func lettersOnly(s string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(kept), " ")
}
