package utils

import "fmt"

// MaskCardNumber keeps only the last four digits of a card number for
// diagnostics. CVVs must never be passed through here or logged at all.
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return "****"
	}
	return "****" + cardNumber[len(cardNumber)-4:]
}

// RedactKey summarizes an API key as a short prefix plus its length so logs
// can confirm which key was active without exposing it.
func RedactKey(key string) string {
	if key == "" {
		return "(empty)"
	}
	prefix := key
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("%s... (len %d)", prefix, len(key))
}
