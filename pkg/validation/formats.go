package validation

import (
	"net/mail"
	"strings"
)

// ValidateFormat checks if a value matches the named format.
// Unknown formats pass; validation never fails on a format it does not
// recognize.
func ValidateFormat(format, value string) bool {
	switch strings.ToLower(format) {
	case "email":
		return validateEmail(value)
	default:
		return true
	}
}

// validateEmail checks RFC 5322 syntax via the mail package, then requires
// a dot in the domain part so bare hostnames like "a@b" are rejected.
func validateEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	// ParseAddress accepts display names ("Alice <a@x.com>"); the boundary
	// wants a plain address only.
	if addr.Address != value {
		return false
	}
	parts := strings.Split(value, "@")
	if len(parts) != 2 {
		return false
	}
	return strings.Contains(parts[1], ".")
}
