package logger

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactNumber masks all but the last two digits of a phone or account number.
func RedactNumber(n string) string {
	if len(n) <= 2 {
		return "***"
	}
	return strings.Repeat("*", len(n)-2) + n[len(n)-2:]
}

func redactValue(key, val string) string {
	key = strings.ToLower(key)
	switch {
	case strings.Contains(key, "password") || strings.Contains(key, "secret"):
		return "***"
	case strings.Contains(key, "email") || strings.Contains(key, "reply"):
		return RedactEmail(val)
	case strings.Contains(key, "phone") || strings.Contains(key, "acct") || strings.Contains(key, "account"):
		return RedactNumber(val)
	}
	// Redact any embedded emails in generic fields
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
