// Package trim splits text into leading whitespace, core content and trailing
// whitespace. The whitespace classification is shared by the template scanner
// and the HTML serializer so both treat the same code points as insignificant.
package trim

import (
	"unicode"
	"unicode/utf8"
)

const (
	leftToRightMark = '\u200e'
	rightToLeftMark = '\u200f'
)

// IsWS reports whether r is insignificant whitespace.
func IsWS(r rune) bool {
	return unicode.IsSpace(r) || r == leftToRightMark || r == rightToLeftMark
}

// Trim returns sub-slices of s such that lead+core+trail == s. When s is
// entirely whitespace it is returned as lead.
func Trim(s string) (lead, core, trail string) {
	start := 0
	for start < len(s) {
		r, size := utf8.DecodeRuneInString(s[start:])
		if !IsWS(r) {
			break
		}
		start += size
	}
	if start == len(s) {
		return s, "", ""
	}

	end := len(s)
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if !IsWS(r) {
			break
		}
		end -= size
	}

	return s[:start], s[start:end], s[end:]
}

// Left returns s without its leading whitespace.
func Left(s string) string {
	lead, _, _ := Trim(s)
	return s[len(lead):]
}

// Right returns s without its trailing whitespace.
func Right(s string) string {
	_, _, trail := Trim(s)
	return s[:len(s)-len(trail)]
}
