// Package upload stores avatar images on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
)

const sniffLen = 512

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// Store writes uploaded avatars under a single directory.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// File describes a stored upload.
type File struct {
	Name    string
	ModTime time.Time
}

// New creates the upload directory if needed.
func New(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Dir is the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes is the per-file size cap.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

func errType() error {
	return apperr.Invalid("avatar", "Hanya file gambar yang diizinkan (jpeg, jpg, png)")
}

func errSize(max int64) error {
	return apperr.Invalid("avatar", fmt.Sprintf("Ukuran file maksimal %dMB", max>>20))
}

// Save validates fh as a JPEG or PNG image within the size cap and writes it
// to disk, returning the stored file name.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", errSize(s.maxBytes)
	}
	if !allowedTypes[strings.ToLower(fh.Header.Get("Content-Type"))] {
		return "", errType()
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if !allowedTypes[http.DetectContentType(head)] {
		return "", errType()
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitize(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(strings.NewReader(string(head)), src), s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.maxBytes {
		err = errSize(s.maxBytes)
	}
	if err != nil {
		os.Remove(filepath.Join(s.dir, name))
		return "", err
	}
	return name, nil
}

// Remove deletes a stored file. The default avatar and missing files are ignored.
func (s *Store) Remove(name string) error {
	if name == "" || name == models.DefaultAvatar {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Files lists the regular files in the upload directory.
func (s *Store) Files() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// sanitize keeps the base name of an uploaded file to a safe character set.
func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "avatar"
	}
	return out
}
