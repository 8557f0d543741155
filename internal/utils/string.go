package utils

import (
	"strconv"
	"strings"
)

// FormatWithCommas formats n with thousands separators, e.g. 1234567 as "1,234,567".
func FormatWithCommas(n int) string {
	str := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(str) % 3
	if head > 0 {
		b.WriteString(str[:head])
	}
	for i := head; i < len(str); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(str[i : i+3])
	}
	return b.String()
}

// NormalizeTag lowercases and trims a tag so "WCAG143 " and "wcag143" count together.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitTags splits a line into normalized tags on whitespace and commas.
func SplitTags(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	tags := fields[:0]
	for _, f := range fields {
		if tag := NormalizeTag(f); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
