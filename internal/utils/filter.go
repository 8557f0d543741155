package utils

import (
	"unicode"
)

// MaxTagLength bounds tags accepted by IsValidTag.
const MaxTagLength = 64

// IsSeparator reports whether r may join the parts of a tag.
func IsSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == ':'
}

// IsOnlyNumbers checks if a string consists entirely of digits.
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars reports runes other than letters, digits and separators.
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsRepetitive reports strings of three or more copies of one byte, like "aaa".
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// IsValidTag reports whether s looks like a tag worth counting.
// Bare numbers, punctuation, overly long tokens and repeated characters are rejected.
func IsValidTag(s string) bool {
	switch {
	case len(s) == 0 || len(s) > MaxTagLength:
		return false
	case IsOnlyNumbers(s):
		return false
	case ContainsSpecialChars(s):
		return false
	case IsRepetitive(s):
		return false
	}
	return true
}
