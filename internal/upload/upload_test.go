package upload

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, field, name, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := multipart.NewReader(&buf, w.Boundary())
	form, err := r.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	require.Len(t, form.File[field], 1)
	return form.File[field][0]
}

func TestSaveStoresFileWithGeneratedName(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(dir, "/uploads", ReceiptPolicy(5<<20))
	require.NoError(t, err)

	fh := fileHeader(t, "receipt", "Lunch Receipt!.jpg", "image/jpeg", []byte("jpegdata"))
	stored, err := saver.Save(fh)
	require.NoError(t, err)

	assert.Equal(t, "Lunch Receipt!.jpg", stored.OriginalName)
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{8}-Lunch_Receipt\.jpg$`), stored.Filename)
	assert.Equal(t, "/uploads/"+stored.Filename, stored.Path)
	assert.Equal(t, int64(8), stored.Size)
	assert.Equal(t, "image/jpeg", stored.Mimetype)

	data, err := os.ReadFile(filepath.Join(dir, stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
}

func TestSaveRejectsUnsupportedExtension(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/uploads", ReceiptPolicy(5<<20))
	require.NoError(t, err)

	fh := fileHeader(t, "receipt", "notes.txt", "text/plain", []byte("hello"))
	_, err = saver.Save(fh)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsMismatchedContentType(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/uploads", ReceiptPolicy(5<<20))
	require.NoError(t, err)

	fh := fileHeader(t, "receipt", "receipt.jpg", "text/html", []byte("<html>"))
	_, err = saver.Save(fh)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsOversizeFile(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/uploads", Policy{MaxSize: 16, Extensions: []string{"png"}})
	require.NoError(t, err)

	fh := fileHeader(t, "receipt", "big.png", "image/png", bytes.Repeat([]byte("x"), 17))
	_, err = saver.Save(fh)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSaveAcceptsPDF(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/uploads", ReceiptPolicy(5<<20))
	require.NoError(t, err)

	fh := fileHeader(t, "receipt", "invoice.PDF", "application/pdf", []byte("%PDF-1.4"))
	stored, err := saver.Save(fh)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.Filename, ".pdf"))
}

func TestImagePolicyRejectsPDF(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/uploads", ImagePolicy(10<<20))
	require.NoError(t, err)

	fh := fileHeader(t, "image", "scan.pdf", "application/pdf", []byte("%PDF-1.4"))
	_, err = saver.Save(fh)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestRemoveIgnoresMissingFile(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/uploads", ReceiptPolicy(5<<20))
	require.NoError(t, err)
	assert.NoError(t, saver.Remove("never-stored.jpg"))
}
