package sheetorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// https://developers.google.com/sheets/api/guides/concepts
const tabPrefixPattern = `(?:([A-Z0-9_]+)|'((?:[^']|'')+)')!`

var (
	tabPrefixRegexp = regexp.MustCompile(`(?i)^` + tabPrefixPattern)
	a1Regexp        = regexp.MustCompile(`(?i)^(?:` + tabPrefixPattern + `)?([A-Z]+)([0-9]+):([A-Z]+)([0-9]+)?$`)
	r1c1Regexp      = regexp.MustCompile(`(?i)^(?:` + tabPrefixPattern + `)?R([0-9]+)C([0-9]+)(?::R([0-9]+)C([0-9]+))?$`)
)

// IsValidA1Notation reports whether text is an A1 range such as "Tab!A1:D4" or "A1:D".
func IsValidA1Notation(text string) bool {
	return a1Regexp.MatchString(text)
}

// IsValidR1C1Notation reports whether text is an R1C1 range such as "Tab!R1C1:R2C2" or "R1C1".
func IsValidR1C1Notation(text string) bool {
	return r1c1Regexp.MatchString(text)
}

// HasTabName reports whether text starts with a "Tab!" prefix.
func HasTabName(text string) bool {
	return tabPrefixRegexp.MatchString(text)
}

// TabName returns the tab name prefixed to text, unquoted.
func TabName(text string) (string, bool) {
	m := tabPrefixRegexp.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return tabFromMatch(m[1], m[2]), true
}

// ParseRange parses R1C1 or A1 text, trying R1C1 first.
func ParseRange(text string) (Range, error) {
	if IsValidR1C1Notation(text) {
		return ParseR1C1(text)
	}
	if IsValidA1Notation(text) {
		return ParseA1(text)
	}
	return Range{}, fmt.Errorf("%w: %q is neither A1 nor R1C1 notation", ErrInvalidFormat, text)
}

// ParseR1C1 parses R1C1 text. A single "R#C#" yields a single-cell range.
func ParseR1C1(text string) (Range, error) {
	m := r1c1Regexp.FindStringSubmatch(text)
	if m == nil {
		return Range{}, fmt.Errorf("%w: %q is not a proper R1C1 notation", ErrInvalidFormat, text)
	}
	tab := tabFromMatch(m[1], m[2])

	startRow, err := parseBound(text, m[3])
	if err != nil {
		return Range{}, err
	}
	startColumn, err := parseBound(text, m[4])
	if err != nil {
		return Range{}, err
	}
	if m[5] == "" {
		return NewCell(tab, startColumn, startRow), nil
	}
	endRow, err := parseBound(text, m[5])
	if err != nil {
		return Range{}, err
	}
	endColumn, err := parseBound(text, m[6])
	if err != nil {
		return Range{}, err
	}
	return NewRange(tab, startColumn, startRow, endColumn, endRow), nil
}

// ParseA1 parses A1 text. The end row is optional ("A2:E" is an open range).
func ParseA1(text string) (Range, error) {
	m := a1Regexp.FindStringSubmatch(text)
	if m == nil {
		return Range{}, fmt.Errorf("%w: %q is not a proper A1 notation", ErrInvalidFormat, text)
	}
	tab := tabFromMatch(m[1], m[2])

	startColumn, endColumn := ColumnID(m[3]), ColumnID(m[5])
	if startColumn == 0 || endColumn == 0 {
		return Range{}, fmt.Errorf("%w: column out of range in %q", ErrInvalidFormat, text)
	}
	startRow, err := parseBound(text, m[4])
	if err != nil {
		return Range{}, err
	}
	if m[6] == "" {
		return NewOpenRange(tab, startColumn, startRow, endColumn), nil
	}
	endRow, err := parseBound(text, m[6])
	if err != nil {
		return Range{}, err
	}
	return NewRange(tab, startColumn, startRow, endColumn, endRow), nil
}

func parseBound(text, digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q has an invalid bound %q", ErrInvalidFormat, text, digits)
	}
	return n, nil
}

func tabFromMatch(bare, quoted string) string {
	if bare != "" {
		return bare
	}
	return strings.ReplaceAll(quoted, "''", "'")
}
