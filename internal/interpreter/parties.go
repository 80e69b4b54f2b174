// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"regexp"
	"strings"

	"invoice-architect/internal/invoice"
)

// partyPatterns recognise metadata lines inside a company or client block.
type partyPatterns struct {
	gstinLabel  *regexp.Regexp
	gstinValue  *regexp.Regexp
	gstinShape  *regexp.Regexp
	panLabel    *regexp.Regexp
	panValue    *regexp.Regexp
	stateCode   *regexp.Regexp
	stateName   *regexp.Regexp
	supplyPlace *regexp.Regexp
	email       *regexp.Regexp
	phoneLabel  *regexp.Regexp
	phoneOnly   *regexp.Regexp
	website     *regexp.Regexp
	taxID       *regexp.Regexp
}

func newPartyPatterns() partyPatterns {
	return partyPatterns{
		gstinLabel:  regexp.MustCompile(`(?i)\bGSTIN\b`),
		gstinValue:  regexp.MustCompile(`\b[0-9A-Z]{15}\b`),
		gstinShape:  regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z][0-9A-Z]Z[0-9A-Z]\b`),
		panLabel:    regexp.MustCompile(`(?i)\bPAN\s*(?:no\.?|number)?\s*[:\-]`),
		panValue:    regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`),
		stateCode:   regexp.MustCompile(`(?i)\bstate\s*code\s*[:\-]?\s*(\d{2})\b`),
		stateName:   regexp.MustCompile(`(?i)\bstate(?:\s*name)?\s*:\s*([A-Za-z][A-Za-z .&]*[A-Za-z])`),
		supplyPlace: regexp.MustCompile(`(?i)\bplace\s+of\s+supply\b`),
		email:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phoneLabel:  regexp.MustCompile(`(?i)\b(?:phone|tel|telephone|mobile|mob|ph|cell|contact)(?:\s*no\.?)?\s*[:.]?\s*(\+?[\d(][\d\s\-().]{5,}\d)`),
		phoneOnly:   regexp.MustCompile(`^\+?[\d\s\-().]{7,}$`),
		website:     regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s,;]+`),
		taxID:       regexp.MustCompile(`(?i)^(?:tax\s*id|vat(?:\s*(?:no|number|id|reg(?:istration)?))?|tin|ein|abn)\.?\s*[:#]\s*([A-Z0-9][A-Z0-9\-]*)`),
	}
}

// findParty locates the first line matching label and reads the block that
// follows it. Lines it uses are marked in consumed.
func (in *Interpreter) findParty(lines []string, consumed []bool, label *regexp.Regexp, extended bool) *invoice.PartialAddress {
	for i, line := range lines {
		if consumed[i] {
			continue
		}
		m := label.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		consumed[i] = true

		var span []string
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			span = append(span, strings.TrimSpace(m[1]))
		}
		for j := i + 1; j < len(lines); j++ {
			if consumed[j] || in.endsSpan(lines[j]) {
				break
			}
			consumed[j] = true
			if lines[j] != "" {
				span = append(span, lines[j])
			}
		}
		if len(span) == 0 {
			return nil
		}
		p := in.parseParty(span, extended)
		if p.IsEmpty() {
			return nil
		}
		return p
	}
	return nil
}

// endsSpan reports whether line closes a party block. Blank lines never do.
func (in *Interpreter) endsSpan(line string) bool {
	switch {
	case line == "":
		return false
	case in.companyLabel.MatchString(line),
		in.clientLabel.MatchString(line),
		in.shipLabel.MatchString(line),
		in.sectionEnd.MatchString(line),
		in.fieldLabel.MatchString(line),
		in.isTableHeader(line):
		return true
	}
	item, ok := in.parseLineItem(line)
	return ok && item.priced
}

func (in *Interpreter) parseParty(span []string, extended bool) *invoice.PartialAddress {
	pp := in.party
	p := &invoice.PartialAddress{}
	var (
		address []string
		pan     string
		phones  []string
	)

	for _, line := range span {
		meta := false

		if email := pp.email.FindString(line); email != "" {
			setOnce(&p.Email, email)
			meta = true
		}
		if m := pp.phoneLabel.FindStringSubmatch(line); m != nil {
			phones = append(phones, strings.TrimSpace(m[1]))
			meta = true
		} else if pp.phoneOnly.MatchString(line) && countDigits(line) >= 7 {
			phones = append(phones, line)
			meta = true
		}
		if site := pp.website.FindString(line); site != "" {
			setOnce(&p.Website, strings.TrimRight(site, "."))
			meta = true
		}
		if m := pp.taxID.FindStringSubmatch(line); m != nil {
			setOnce(&p.TaxID, m[1])
			meta = true
		}

		if extended {
			upper := strings.ToUpper(line)
			if pp.gstinLabel.MatchString(line) {
				if v := pp.gstinValue.FindString(upper); v != "" {
					setOnce(&p.GSTIN, v)
				}
				meta = true
			} else if v := pp.gstinShape.FindString(upper); v != "" {
				setOnce(&p.GSTIN, v)
				meta = true
			}
			if pp.panLabel.MatchString(line) {
				if v := pp.panValue.FindString(upper); v != "" && pan == "" {
					pan = v
				}
				meta = true
			}
			if m := pp.stateCode.FindStringSubmatch(line); m != nil {
				setOnce(&p.StateCode, m[1])
				meta = true
			}
			if m := pp.stateName.FindStringSubmatch(line); m != nil {
				setOnce(&p.State, trimStateName(m[1]))
				meta = true
			}
			if pp.supplyPlace.MatchString(line) {
				meta = true
			}
		}

		if !meta {
			address = append(address, line)
		}
	}

	if len(phones) > 0 {
		p.Phone = ptr(phones[0])
	}
	if len(phones) > 1 {
		p.AltPhone = ptr(phones[1])
	}
	if pan != "" && p.TaxID == nil {
		p.TaxID = ptr(pan)
	}
	if len(address) > 0 {
		p.Name = ptr(address[0])
	}
	if len(address) > 1 {
		p.Address = ptr(strings.Join(address[1:], "\n"))
	}
	return p
}

// trimStateName drops a "State Code" label that ran into the name.
func trimStateName(s string) string {
	if i := strings.Index(strings.ToLower(s), " state code"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func setOnce(dst **string, v string) {
	if *dst == nil && v != "" {
		*dst = ptr(v)
	}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
