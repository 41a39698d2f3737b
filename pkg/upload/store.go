// Package upload writes multipart file parts to the local upload directory.
package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go-contact-backend/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrTooLarge is returned when a part exceeds the configured size limit
var ErrTooLarge = errors.New("upload: file exceeds size limit")

// maxNameAttempts bounds the suffix retries after a timestamp collision
const maxNameAttempts = 5

// Store saves uploads as <unix-millis><ext> inside dir.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

var _ domain.AttachmentStore = (*Store)(nil)

func NewStore(dir string, maxBytes int64) *Store {
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// EnsureDir creates the upload directory when it does not exist yet
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", s.dir, err)
	}
	return nil
}

// Save copies fh into the upload directory and returns the stored attachment.
func (s *Store) Save(fh *multipart.FileHeader) (*domain.Attachment, error) {
	if fh.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(fh.Filename)
	dst, name, err := s.create(ext)
	if err != nil {
		return nil, err
	}
	storedPath := filepath.Join(s.dir, name)

	// Read one byte past the limit so a lying Size header is still caught
	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(storedPath)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write uploaded file: %w", err)
	}

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(storedPath); err == nil {
		contentType = mtype.String()
	}

	return &domain.Attachment{
		StoredPath:        storedPath,
		Filename:          name,
		OriginalName:      fh.Filename,
		OriginalExtension: ext,
		SizeBytes:         written,
		ContentType:       contentType,
	}, nil
}

// create opens a new file exclusively. Two uploads landing in the same
// millisecond get a random suffix instead of overwriting each other.
func (s *Store) create(ext string) (*os.File, string, error) {
	base := strconv.FormatInt(s.now().UnixMilli(), 10)
	name := base + ext

	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt >= maxNameAttempts {
			return nil, "", fmt.Errorf("failed to create upload file: %w", err)
		}
		name = base + "-" + uuid.NewString()[:8] + ext
	}
}

// Remove deletes a stored attachment. Missing files are not an error.
func (s *Store) Remove(att *domain.Attachment) error {
	if att == nil || att.StoredPath == "" {
		return nil
	}
	if err := os.Remove(att.StoredPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove upload %s: %w", att.Filename, err)
	}
	return nil
}
