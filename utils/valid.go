package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptRegex   = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	// Trim spaces
	input = strings.TrimSpace(input)

	// Remove any potential script tags
	input = scriptRegex.ReplaceAllString(input, "")

	// Remove control characters
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	return html.EscapeString(input)
}

// SanitizePhone normalizes a Brazilian phone number to digits with the 55
// country code, e.g. "(11) 91234-5678" -> "5511912345678".
func SanitizePhone(phone string) (string, error) {
	digits := nonDigitRegex.ReplaceAllString(phone, "")
	if digits == "" {
		return "", errors.New("phone number is required")
	}

	// Area code plus 8 or 9 digit subscriber number
	if len(digits) == 10 || len(digits) == 11 {
		digits = "55" + digits
	}

	if !strings.HasPrefix(digits, "55") || len(digits) < 12 || len(digits) > 13 {
		return "", errors.New("invalid phone number")
	}

	return digits, nil
}
