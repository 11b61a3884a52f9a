package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/auth"
	"github.com/isdelr/taskflow-be/internal/models"
)

// multipartOverhead is allowed on top of the file size cap for form fields
// and part headers.
const multipartOverhead = 1 << 20

// AvatarSaver stores an uploaded avatar and returns its file name.
type AvatarSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
	MaxBytes() int64
}

// currentUser returns the user attached by auth.Verifier.
func currentUser(r *http.Request) (models.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return models.User{}, apperr.Unauthenticated("Akses tidak diizinkan, token tidak ditemukan")
	}
	return user, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipart parses a multipart form capped at the avatar size limit.
// The caller must call r.MultipartForm.RemoveAll when done.
func parseMultipart(w http.ResponseWriter, r *http.Request, avatars AvatarSaver) error {
	r.Body = http.MaxBytesReader(w, r.Body, avatars.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(avatars.MaxBytes()); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Invalid("avatar", "Ukuran file terlalu besar")
		}
		return apperr.BadRequest("Format data tidak valid")
	}
	return nil
}

// formValue returns a pointer to a submitted form field, or nil if absent.
func formValue(r *http.Request, key string) *string {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// saveAvatar stores the "avatar" file of a parsed multipart form. It returns
// an empty name when no file was sent.
func saveAvatar(r *http.Request, avatars AvatarSaver) (string, error) {
	files := r.MultipartForm.File["avatar"]
	if len(files) == 0 {
		return "", nil
	}
	return avatars.Save(files[0])
}
