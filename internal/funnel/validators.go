package funnel

import (
	"strings"
	"unicode"
)

// NormalizePhoneNumber strips formatting characters, preserving a
// leading + for international numbers.
func NormalizePhoneNumber(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "+" + cleaned
	}
	return cleaned
}

// IsValidPhoneNumber reports whether phone looks like a dialable number.
func IsValidPhoneNumber(phone string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	// 8-15 digits covers national and E.164 numbers.
	if len(cleaned) < 8 || len(cleaned) > 15 {
		return false
	}

	// Reject obviously fake input.
	fake := map[string]bool{
		"0000000000": true,
		"1111111111": true,
		"1234567890": true,
		"9999999999": true,
		"0123456789": true,
	}
	return !fake[cleaned]
}

// IsValidEmail is a light sanity check; real verification happens via
// the confirmation email, not here.
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}
