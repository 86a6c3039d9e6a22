// Package upload stores multipart receipt files on local disk under
// collision-free names and enforces type and size limits.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge signals a file over the policy's size limit.
	ErrTooLarge = errors.New("file exceeds size limit")

	// ErrUnsupportedType signals a disallowed extension or content type.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Policy bounds what a Saver accepts.
type Policy struct {
	MaxSize    int64
	Extensions []string // lower-case, without the dot
}

// ReceiptPolicy matches the expense attachment rules: images and PDFs
// up to maxSize bytes.
func ReceiptPolicy(maxSize int64) Policy {
	return Policy{MaxSize: maxSize, Extensions: []string{"jpeg", "jpg", "png", "gif", "pdf"}}
}

// ImagePolicy matches the OCR input rules: image formats only.
func ImagePolicy(maxSize int64) Policy {
	return Policy{MaxSize: maxSize, Extensions: []string{"jpeg", "jpg", "png", "gif", "webp"}}
}

// StoredFile describes a successfully stored upload.
type StoredFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Mimetype     string `json:"mimetype"`
}

// Saver writes uploads into one directory under a fixed URL prefix.
type Saver struct {
	dir       string
	urlPrefix string
	policy    Policy
}

// NewSaver ensures dir exists and returns a saver serving files under
// urlPrefix (e.g. "/uploads").
func NewSaver(dir, urlPrefix string, policy Policy) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Saver{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/"), policy: policy}, nil
}

// Dir returns the backing directory.
func (s *Saver) Dir() string { return s.dir }

// Allowed checks a file header against the policy without storing it.
func (s *Saver) Allowed(fh *multipart.FileHeader) error {
	if fh.Size > s.policy.MaxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, fh.Size, s.policy.MaxSize)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	if !s.extAllowed(ext) {
		return fmt.Errorf("%w: extension %q", ErrUnsupportedType, ext)
	}
	// The declared content type must agree; browsers send image/jpeg,
	// image/png, application/pdf and friends.
	if ct := fh.Header.Get("Content-Type"); ct != "" && !mimeAllowed(ct, ext) {
		return fmt.Errorf("%w: content type %q", ErrUnsupportedType, ct)
	}
	return nil
}

// Save validates and stores one multipart file, returning its metadata.
func (s *Saver) Save(fh *multipart.FileHeader) (StoredFile, error) {
	if err := s.Allowed(fh); err != nil {
		return StoredFile{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := storedName(fh.Filename)
	dstPath := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create stored file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, s.policy.MaxSize+1))
	if err != nil {
		os.Remove(dstPath)
		return StoredFile{}, fmt.Errorf("write stored file: %w", err)
	}
	if written > s.policy.MaxSize {
		os.Remove(dstPath)
		return StoredFile{}, fmt.Errorf("%w: body larger than declared size", ErrTooLarge)
	}

	return StoredFile{
		Filename:     name,
		OriginalName: fh.Filename,
		Path:         s.urlPrefix + "/" + name,
		Size:         written,
		Mimetype:     fh.Header.Get("Content-Type"),
	}, nil
}

// Remove deletes a previously stored file; missing files are not errors.
func (s *Saver) Remove(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Saver) extAllowed(ext string) bool {
	for _, allowed := range s.policy.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func mimeAllowed(ct, ext string) bool {
	ct = strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	if strings.HasPrefix(ct, "image/") {
		return ext != "pdf"
	}
	if ct == "application/pdf" {
		return ext == "pdf"
	}
	// multipart writers that send application/octet-stream defer to the
	// extension check.
	return ct == "application/octet-stream"
}

// storedName builds "<unix-ms>-<8 uuid chars>-<sanitized base>.<ext>",
// unique in practice and safe to serve back by path.
func storedName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = sanitizeBase(base)
	if base == "" {
		base = "file"
	}
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s-%s%s", time.Now().UnixMilli(), short, base, ext)
}

func sanitizeBase(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
