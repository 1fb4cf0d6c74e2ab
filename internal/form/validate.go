package form

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation failure kinds. These are the client-facing error codes for the
// 400 responses; delivery-side codes live in the relay package.
const (
	KindMissingField       = "MissingField"
	KindInvalidEmailFormat = "InvalidEmailFormat"
	KindInvalidAttachment  = "InvalidAttachment"
)

// ValidationError reports every failed field at once so the caller can tell
// the submitter exactly what to fix, not just that something was wrong.
type ValidationError struct {
	Kind   string
	Fields map[string]string // field name → reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field(s) failed validation", e.Kind, len(e.Fields))
}

// emailRegex is deliberately loose: local part, @, domain, dot, tld. Real
// mailbox verification is the relay's problem, not the form's.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.\S+$`)

// ValidEmail reports whether s has a plausible local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// truthy mirrors how HTML forms and JSON clients encode checked checkboxes.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// ValidateContact checks the contact form fields and returns the decoded
// submission. All failed fields are reported together.
func ValidateContact(fields map[string]string) (*Contact, *ValidationError) {
	trimmed := trimAll(fields)
	missing := map[string]string{}
	for _, f := range []string{"name", "email", "message"} {
		if trimmed[f] == "" {
			missing[f] = "missing"
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Kind: KindMissingField, Fields: missing}
	}
	if !ValidEmail(trimmed["email"]) {
		return nil, &ValidationError{
			Kind:   KindInvalidEmailFormat,
			Fields: map[string]string{"email": "invalid format"},
		}
	}
	return &Contact{
		Name:    trimmed["name"],
		Email:   trimmed["email"],
		Message: trimmed["message"],
	}, nil
}

// ValidateAffiliate checks the affiliate application fields and returns the
// decoded submission with its attachments. The agreement checkbox must be
// explicitly truthy; absence is a failure, never silently defaulted.
func ValidateAffiliate(fields map[string]string, attachments []Attachment) (*Affiliate, *ValidationError) {
	trimmed := trimAll(fields)
	missing := map[string]string{}
	for _, f := range []string{"name", "email", "phoneNumber"} {
		if trimmed[f] == "" {
			missing[f] = "missing"
		}
	}
	if trimmed["agreement"] == "" {
		missing["agreement"] = "missing"
	} else if !truthy(trimmed["agreement"]) {
		missing["agreement"] = "must be accepted"
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Kind: KindMissingField, Fields: missing}
	}
	if !ValidEmail(trimmed["email"]) {
		return nil, &ValidationError{
			Kind:   KindInvalidEmailFormat,
			Fields: map[string]string{"email": "invalid format"},
		}
	}
	return &Affiliate{
		Name:        trimmed["name"],
		Email:       trimmed["email"],
		PhoneNumber: trimmed["phoneNumber"],
		Address:     trimmed["address"],
		Website:     trimmed["website"],
		BankName:    trimmed["bankName"],
		AcctNo:      trimmed["acctNo"],
		Agreement:   true,
		Attachments: attachments,
	}, nil
}

func trimAll(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = strings.TrimSpace(v)
	}
	return out
}
