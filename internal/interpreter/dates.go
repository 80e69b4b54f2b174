// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	yearFirst = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	yearLast  = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})\b`)
	ordinal   = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)
)

// dateLayouts are tried in order for dates that are not purely numeric.
var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2-Jan-2006",
	"2-January-2006",
	"2 Jan, 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"Monday, 2 January 2006",
	"2-Jan-06",
}

// NormalizeDate converts a date-like prefix of s to YYYY-MM-DD.
//
// Numeric dates are rearranged by position only: YYYY-MM-DD and
// YYYY/MM/DD keep their order, DD-MM-YYYY and DD/MM/YYYY are reversed. No
// range check is made, so "03/15/2024" becomes "2024-15-03". Other forms go
// through general date parsing. It returns false when nothing parses.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if m := yearFirst.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3])), true
	}
	if m := yearLast.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[2]), pad2(m[1])), true
	}

	cleaned := ordinal.ReplaceAllString(s, "$1")
	// Casers keep state, so each call gets its own.
	cleaned = cases.Title(language.English).String(strings.ToLower(cleaned))
	fields := strings.Fields(cleaned)
	for n := min(len(fields), 5); n > 0; n-- {
		candidate := strings.TrimRight(strings.Join(fields[:n], " "), ".,;")
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.Format(time.DateOnly), true
			}
		}
	}
	return "", false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func (in *Interpreter) findDate(re *regexp.Regexp, text string) *string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if d, ok := NormalizeDate(m[1]); ok {
			return ptr(d)
		}
	}
	return nil
}
