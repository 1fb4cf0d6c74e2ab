package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/flexihomes/formrelay/internal/form"
)

// maxAttachmentSize caps each uploaded file at 5 MiB.
const maxAttachmentSize = 5 << 20

// attachmentFields are the file parts the affiliate form may carry. Missing
// parts are simply omitted; neither document is required.
var attachmentFields = []string{"passport", "validID"}

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// extractAttachments pulls the first file for each known field out of the
// parsed multipart form into memory. A file that is oversize or of a
// disallowed type rejects the whole submission — there is no partial accept.
func extractAttachments(r *http.Request) ([]form.Attachment, *form.ValidationError) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil, nil
	}

	var out []form.Attachment
	for _, field := range attachmentFields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}
		header := headers[0]

		if header.Size > maxAttachmentSize {
			return nil, &form.ValidationError{
				Kind: form.KindInvalidAttachment,
				Fields: map[string]string{
					field: fmt.Sprintf("file exceeds %d MiB limit", maxAttachmentSize>>20),
				},
			}
		}

		f, err := header.Open()
		if err != nil {
			return nil, &form.ValidationError{
				Kind:   form.KindInvalidAttachment,
				Fields: map[string]string{field: "unreadable upload"},
			}
		}
		data, err := io.ReadAll(io.LimitReader(f, maxAttachmentSize+1))
		f.Close()
		if err != nil {
			return nil, &form.ValidationError{
				Kind:   form.KindInvalidAttachment,
				Fields: map[string]string{field: "unreadable upload"},
			}
		}
		if len(data) > maxAttachmentSize {
			return nil, &form.ValidationError{
				Kind: form.KindInvalidAttachment,
				Fields: map[string]string{
					field: fmt.Sprintf("file exceeds %d MiB limit", maxAttachmentSize>>20),
				},
			}
		}

		contentType := attachmentContentType(header.Header.Get("Content-Type"), data)
		if !allowedAttachmentTypes[contentType] {
			return nil, &form.ValidationError{
				Kind: form.KindInvalidAttachment,
				Fields: map[string]string{
					field: fmt.Sprintf("unsupported file type %q (want JPEG, PNG or PDF)", contentType),
				},
			}
		}

		out = append(out, form.Attachment{
			Field:       field,
			Filename:    header.Filename,
			Data:        data,
			ContentType: contentType,
		})
	}
	return out, nil
}

// attachmentContentType trusts the declared part header only when it is
// specific; otherwise it sniffs the payload.
func attachmentContentType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}
