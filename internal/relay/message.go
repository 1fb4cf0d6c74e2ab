package relay

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/flexihomes/formrelay/internal/form"
	"github.com/osteele/liquid"
)

// Message is a channel-agnostic notification document. It is built fresh per
// submission and immutable once composed.
type Message struct {
	From        string
	To          string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []form.Attachment
}

// Notification body templates. Optional affiliate fields fall back to the
// "Not provided" sentinel so the operator always sees the full field set.
const contactBodyTemplate = `New message from {{ name }}:

{{ message }}
`

const affiliateBodyTemplate = `New Affiliate Application:

Name:           {{ name }}
Email:          {{ email }}
Phone Number:   {{ phoneNumber }}
Address:        {{ address | default: "Not provided" }}
Website:        {{ website | default: "Not provided" }}
Bank Name:      {{ bankName | default: "Not provided" }}
Account Number: {{ acctNo | default: "Not provided" }}
Agreement:      {{ agreement }}
`

// Composer renders submissions into notification messages. Templates are
// parsed once at construction; rendering is deterministic for fixed inputs.
type Composer struct {
	contactTpl   *liquid.Template
	affiliateTpl *liquid.Template
}

// NewComposer builds the composer and registers the template filters.
func NewComposer() (*Composer, error) {
	engine := liquid.NewEngine()

	// Default value filter: {{ address | default: "Not provided" }}
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	contactTpl, err := engine.ParseString(contactBodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse contact template: %w", err)
	}
	affiliateTpl, err := engine.ParseString(affiliateBodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse affiliate template: %w", err)
	}
	return &Composer{contactTpl: contactTpl, affiliateTpl: affiliateTpl}, nil
}

// Compose turns a validated submission into a notification message.
//
// From is always the relay identity, never the submitter's address — using
// the submitter would fail DMARC and look like relay spoofing. The submitter
// instead becomes Reply-To so the operator can answer directly.
func (c *Composer) Compose(sub form.Submission, tc *TransporterConfig, recipient string) (*Message, error) {
	var (
		body    string
		subject string
		err     error
	)

	switch s := sub.(type) {
	case *form.Contact:
		subject = fmt.Sprintf("New Contact Form Submission from %s", s.Name)
		body, err = c.contactTpl.RenderString(liquid.Bindings{
			"name":    s.Name,
			"email":   s.Email,
			"message": s.Message,
		})
	case *form.Affiliate:
		subject = fmt.Sprintf("New Affiliate Application from %s", s.Name)
		agreement := "Did not agree to terms"
		if s.Agreement {
			agreement = "Agreed to terms"
		}
		body, err = c.affiliateTpl.RenderString(liquid.Bindings{
			"name":        s.Name,
			"email":       s.Email,
			"phoneNumber": s.PhoneNumber,
			"address":     s.Address,
			"website":     s.Website,
			"bankName":    s.BankName,
			"acctNo":      s.AcctNo,
			"agreement":   agreement,
		})
	default:
		return nil, fmt.Errorf("unknown submission variant %q", sub.FormName())
	}
	if err != nil {
		return nil, fmt.Errorf("render %s body: %w", sub.FormName(), err)
	}

	return &Message{
		From:        tc.From,
		To:          recipient,
		ReplyTo:     sub.SubmitterEmail(),
		Subject:     subject,
		Body:        body,
		Attachments: sub.Files(),
	}, nil
}

// headerValue strips CR/LF so submitter-controlled text (names, filenames)
// can never terminate a header and smuggle extra ones into the block.
var headerValue = strings.NewReplacer("\r", "", "\n", "").Replace

// Build assembles the RFC 5322 wire form of the message. Attachments go into
// a multipart/mixed envelope with base64 bodies; without attachments the
// message is plain text. The boundary derives from the message ID so the
// output is reproducible for a fixed ID.
func (m *Message) Build(messageID string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", headerValue(m.From)))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", headerValue(m.To)))
	if m.ReplyTo != "" {
		buf.WriteString(fmt.Sprintf("Reply-To: %s\r\n", headerValue(m.ReplyTo)))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", headerValue(m.Subject))))
	buf.WriteString(fmt.Sprintf("Message-ID: <%s>\r\n", messageID))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(m.Attachments) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(m.Body)
		buf.WriteString("\r\n")
		return buf.Bytes()
	}

	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, messageID)
	if len(clean) > 16 {
		clean = clean[:16]
	}
	boundary := "=_" + clean
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(m.Body)
	buf.WriteString("\r\n")

	for _, att := range m.Attachments {
		filename := headerValue(att.Filename)
		buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", att.ContentType, filename))
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", filename))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		writeBase64(&buf, att.Data)
		buf.WriteString("\r\n")
	}
	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}

// writeBase64 encodes data with RFC 2045 line wrapping at 76 columns.
func writeBase64(buf *bytes.Buffer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	if encoded != "" {
		buf.WriteString(encoded)
		buf.WriteString("\r\n")
	}
}
