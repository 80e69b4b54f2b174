// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// readLiteral parses a literal string whose opening parenthesis is at
// data[start]. Nested balanced parentheses are kept. An unterminated string
// runs to the end of the buffer.
func readLiteral(data []byte, start int) ([]byte, int) {
	var out []byte
	depth := 1
	i := start + 1
	for i < len(data) {
		c := data[i]
		switch c {
		case '\\':
			i++
			if i >= len(data) {
				return out, i
			}
			e := data[i]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\r':
				// line continuation
				if i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out, i + 1
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
		i++
	}
	return out, i
}

// readHex parses a hex string whose opening angle bracket is at data[start].
// It reports false when the bracket does not open a well-formed hex string.
func readHex(data []byte, start int) ([]byte, int, bool) {
	var digits []byte
	i := start + 1
	for ; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '>':
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for k := range out {
				out[k] = hexNibble(digits[2*k])<<4 | hexNibble(digits[2*k+1])
			}
			return out, i + 1, true
		case isHexDigit(c):
			digits = append(digits, c)
		case isPDFWhitespace(c):
		default:
			return nil, start + 1, false
		}
	}
	return nil, start + 1, false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isPDFWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func hasUTF16BOM(b []byte) bool {
	return len(b) >= 2 && ((b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE))
}

func decodeUTF16(b []byte) (string, bool) {
	out, err := xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// decodeLiteralBytes decodes the bytes of a literal string: UTF-16 when a
// byte order mark is present, Latin-1 otherwise.
func decodeLiteralBytes(b []byte) string {
	if hasUTF16BOM(b) {
		if s, ok := decodeUTF16(b); ok {
			return s
		}
	}
	return latin1(b)
}

// decodeHexBytes tries UTF-16 with a byte order mark, then UTF-8, then Latin-1.
func decodeHexBytes(b []byte) string {
	if hasUTF16BOM(b) {
		if s, ok := decodeUTF16(b); ok {
			return s
		}
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return latin1(b)
}

// latin1 maps every byte to the code point of the same value.
func latin1(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		var sb strings.Builder
		for _, c := range b {
			sb.WriteRune(rune(c))
		}
		return sb.String()
	}
	return string(out)
}

// normalizeText collapses whitespace runs inside each line, drops control
// characters and empty lines, and composes the result to NFC.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		var sb strings.Builder
		space := false
		for _, r := range line {
			switch {
			case unicode.IsSpace(r):
				space = sb.Len() > 0
			case !unicode.IsPrint(r):
			default:
				if space {
					sb.WriteByte(' ')
					space = false
				}
				sb.WriteRune(r)
			}
		}
		if sb.Len() > 0 {
			lines = append(lines, sb.String())
		}
	}
	return norm.NFC.String(strings.Join(lines, "\n"))
}

// scanStringTokens collects every literal and hex string anywhere in corpus.
func scanStringTokens(corpus []byte) string {
	var tokens []string
	for i := 0; i < len(corpus); {
		switch corpus[i] {
		case '(':
			raw, next := readLiteral(corpus, i)
			if s := decodeLiteralBytes(raw); strings.TrimSpace(s) != "" {
				tokens = append(tokens, s)
			}
			i = next
		case '<':
			if i+1 < len(corpus) && corpus[i+1] == '<' {
				i += 2
				continue
			}
			raw, next, ok := readHex(corpus, i)
			if ok && len(raw) > 0 {
				if s := decodeHexBytes(raw); strings.TrimSpace(s) != "" {
					tokens = append(tokens, s)
				}
			}
			i = next
		default:
			i++
		}
	}
	return strings.Join(tokens, " ")
}

func trimTrailingEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}
