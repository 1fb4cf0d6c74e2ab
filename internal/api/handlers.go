package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/flexihomes/formrelay/internal/config"
	"github.com/flexihomes/formrelay/internal/form"
	"github.com/flexihomes/formrelay/internal/pkg/logger"
	"github.com/flexihomes/formrelay/internal/relay"
)

// Handlers wires the form pipeline: decode → validate → compose → dispatch.
type Handlers struct {
	transporter *relay.TransporterConfig
	composer    *relay.Composer
	dispatcher  *relay.Dispatcher
	recipient   string
	diagnostic  bool
}

// NewHandlers creates the request handlers around a resolved transporter.
func NewHandlers(tc *relay.TransporterConfig, composer *relay.Composer, dispatcher *relay.Dispatcher, cfg *config.Config) *Handlers {
	return &Handlers{
		transporter: tc,
		composer:    composer,
		dispatcher:  dispatcher,
		recipient:   cfg.SMTP.Recipient,
		diagnostic:  cfg.Server.Diagnostic,
	}
}

// HandleContact processes the contact form.
//
//	POST /contact  (JSON or urlencoded: name, email, message)
func (h *Handlers) HandleContact(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeContactBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, verr := form.ValidateContact(fields)
	if verr != nil {
		respondValidationError(w, "Please fill in all fields.", verr)
		return
	}

	logger.Info("contact form submitted", "name", sub.Name, "email", sub.Email)

	msg, cerr := h.composer.Compose(sub, h.transporter, h.operatorMailbox())
	if cerr != nil {
		respondSafeError(w, http.StatusInternalServerError, cerr, "Failed to send message.")
		return
	}

	result, derr := h.dispatcher.Dispatch(r.Context(), h.transporter, msg)
	if derr != nil {
		respondDispatchError(w, derr, h.diagnostic)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":   "Contact form submitted successfully!",
		"messageId": result.MessageID,
	})
}

// HandleAffiliate processes the affiliate application, including the
// passport / validID uploads.
//
//	POST /submit  (multipart form)
//	POST /send-email  (legacy alias)
func (h *Handlers) HandleAffiliate(w http.ResponseWriter, r *http.Request) {
	// Two 5 MiB files plus text fields; anything above this spills to disk
	// inside ParseMultipartForm and is cleaned up below.
	if err := r.ParseMultipartForm(12 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	attachments, verr := extractAttachments(r)
	if verr != nil {
		respondValidationError(w, "Invalid attachment", verr)
		return
	}

	fields := map[string]string{}
	for _, f := range []string{"name", "email", "phoneNumber", "address", "website", "bankName", "acctNo", "agreement"} {
		fields[f] = r.FormValue(f)
	}

	sub, verr := form.ValidateAffiliate(fields, attachments)
	if verr != nil {
		respondValidationError(w, "Required fields are missing", verr)
		return
	}

	logger.Info("affiliate application submitted",
		"name", sub.Name,
		"email", sub.Email,
		"phone", sub.PhoneNumber,
		"attachments", len(sub.Attachments),
	)

	msg, cerr := h.composer.Compose(sub, h.transporter, h.operatorMailbox())
	if cerr != nil {
		respondSafeError(w, http.StatusInternalServerError, cerr, "Failed to send email")
		return
	}

	result, derr := h.dispatcher.Dispatch(r.Context(), h.transporter, msg)
	if derr != nil {
		respondDispatchError(w, derr, h.diagnostic)
		return
	}

	resp := map[string]string{
		"message":   "Form submitted successfully",
		"messageId": result.MessageID,
	}
	if result.PreviewURL != "" {
		resp["previewUrl"] = result.PreviewURL
	}
	respondJSON(w, http.StatusOK, resp)
}

// HealthCheck reports liveness.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   string(h.transporter.Mode),
	})
}

// operatorMailbox is the fixed notification recipient. When unset (sandbox
// with zero config) notifications go to the relay identity itself, matching
// the historical from=to behaviour.
func (h *Handlers) operatorMailbox() string {
	if h.recipient != "" {
		return h.recipient
	}
	return h.transporter.From
}

// decodeContactBody accepts either a JSON object or a urlencoded form.
func decodeContactBody(r *http.Request) (map[string]string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var body struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		return map[string]string{
			"name":    body.Name,
			"email":   body.Email,
			"message": body.Message,
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return map[string]string{
		"name":    r.PostFormValue("name"),
		"email":   r.PostFormValue("email"),
		"message": r.PostFormValue("message"),
	}, nil
}
