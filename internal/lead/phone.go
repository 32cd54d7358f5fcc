package lead

import (
	"regexp"
	"strings"
	"unicode"
)

// Vietnamese mobile numbers: 0 or +84, a carrier digit, then eight digits.
var mobilePattern = regexp.MustCompile(`^(0|\+84)(3|5|7|8|9)[0-9]{8}$`)

// ValidatePhone reports whether phone is a Vietnamese mobile number once all
// whitespace is removed.
func ValidatePhone(phone string) bool {
	return mobilePattern.MatchString(stripSpace(phone))
}

// FormatPhone normalizes a number for display. Numbers carrying the 84 country
// code get a leading "+". National numbers lose their separators and, with at
// least ten digits, are grouped as "XXXX XXX XXX". Anything else is returned
// as given.
func FormatPhone(phone string) string {
	digits := onlyDigits(phone)
	switch {
	case strings.HasPrefix(digits, "84"):
		return "+" + digits
	case strings.HasPrefix(digits, "0"):
		if len(digits) < 10 {
			return digits
		}
		return digits[:4] + " " + digits[4:7] + " " + digits[7:10] + digits[10:]
	}
	return phone
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
