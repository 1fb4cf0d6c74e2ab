// Package form holds the decoded form submission variants and the
// validation rules applied to them before any delivery is attempted.
package form

// NotProvided is the sentinel rendered for optional affiliate fields the
// submitter left blank, so the notification always shows the full field set.
const NotProvided = "Not provided"

// Attachment is one uploaded file, buffered in memory for the lifetime of a
// single request. It is never written to disk or retained after dispatch.
type Attachment struct {
	Field       string // form field the file arrived under ("passport" or "validID")
	Filename    string // original filename from the upload
	Data        []byte
	ContentType string
}

// Submission is one validated form instance, either a Contact or an Affiliate.
type Submission interface {
	// FormName identifies the form variant for logging and subjects.
	FormName() string
	// SubmitterName returns the submitter's name.
	SubmitterName() string
	// SubmitterEmail returns the submitter's email for the Reply-To header.
	SubmitterEmail() string
	// Files returns the attachments carried by the submission, if any.
	Files() []Attachment
}

// Contact is a short contact-us message.
type Contact struct {
	Name    string
	Email   string
	Message string
}

func (c *Contact) FormName() string       { return "contact" }
func (c *Contact) SubmitterName() string  { return c.Name }
func (c *Contact) SubmitterEmail() string { return c.Email }
func (c *Contact) Files() []Attachment    { return nil }

// Affiliate is a multi-field affiliate application with optional identity
// document uploads. Optional fields stay empty here and render as the
// NotProvided sentinel when the notification is composed.
type Affiliate struct {
	Name        string
	Email       string
	PhoneNumber string
	Address     string
	Website     string
	BankName    string
	AcctNo      string
	Agreement   bool
	Attachments []Attachment
}

func (a *Affiliate) FormName() string       { return "affiliate" }
func (a *Affiliate) SubmitterName() string  { return a.Name }
func (a *Affiliate) SubmitterEmail() string { return a.Email }
func (a *Affiliate) Files() []Attachment    { return a.Attachments }
