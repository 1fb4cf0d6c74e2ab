package api

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/flexihomes/formrelay/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedMultipart(t *testing.T, files []filePart) *http.Request {
	t.Helper()
	req := multipartRequest(t, "/submit", map[string]string{"name": "Ada"}, files)
	require.NoError(t, req.ParseMultipartForm(12<<20))
	return req
}

func TestExtractAttachmentsBothFiles(t *testing.T) {
	req := parsedMultipart(t, []filePart{
		{field: "passport", filename: "passport.jpg", contentType: "image/jpeg", data: []byte("jpeg-data")},
		{field: "validID", filename: "id.png", contentType: "image/png", data: []byte("png-data")},
	})

	atts, verr := extractAttachments(req)
	require.Nil(t, verr)
	require.Len(t, atts, 2)

	assert.Equal(t, "passport", atts[0].Field)
	assert.Equal(t, "passport.jpg", atts[0].Filename)
	assert.Equal(t, []byte("jpeg-data"), atts[0].Data)
	assert.Equal(t, "image/jpeg", atts[0].ContentType)
	assert.Equal(t, "validID", atts[1].Field)
}

func TestExtractAttachmentsMissingPartsAreOmitted(t *testing.T) {
	req := parsedMultipart(t, []filePart{
		{field: "passport", filename: "p.pdf", contentType: "application/pdf", data: []byte("pdf")},
	})

	atts, verr := extractAttachments(req)
	require.Nil(t, verr)
	require.Len(t, atts, 1)
	assert.Equal(t, "passport", atts[0].Field)
}

func TestExtractAttachmentsNoFiles(t *testing.T) {
	req := parsedMultipart(t, nil)

	atts, verr := extractAttachments(req)
	assert.Nil(t, verr)
	assert.Empty(t, atts)
}

func TestExtractAttachmentsOversizeRejectsSubmission(t *testing.T) {
	req := parsedMultipart(t, []filePart{
		{field: "passport", filename: "ok.jpg", contentType: "image/jpeg", data: []byte("small")},
		{field: "validID", filename: "huge.jpg", contentType: "image/jpeg", data: bytes.Repeat([]byte("x"), 6<<20)},
	})

	atts, verr := extractAttachments(req)
	require.NotNil(t, verr)
	assert.Equal(t, form.KindInvalidAttachment, verr.Kind)
	assert.Contains(t, verr.Fields["validID"], "5 MiB")
	assert.Nil(t, atts, "partial acceptance is not allowed")
}

func TestExtractAttachmentsDisallowedType(t *testing.T) {
	req := parsedMultipart(t, []filePart{
		{field: "passport", filename: "clip.gif", contentType: "image/gif", data: []byte("gif")},
	})

	atts, verr := extractAttachments(req)
	require.NotNil(t, verr)
	assert.Equal(t, form.KindInvalidAttachment, verr.Kind)
	assert.Contains(t, verr.Fields["passport"], "image/gif")
	assert.Nil(t, atts)
}

func TestExtractAttachmentsSniffsGenericContentType(t *testing.T) {
	pngHeader := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	req := parsedMultipart(t, []filePart{
		{field: "passport", filename: "photo", contentType: "application/octet-stream", data: pngHeader},
	})

	atts, verr := extractAttachments(req)
	require.Nil(t, verr)
	require.Len(t, atts, 1)
	assert.Equal(t, "image/png", atts[0].ContentType)
}
