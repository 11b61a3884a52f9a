package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isdelr/taskflow-be/internal/apperr"
)

func TestErrorStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.Invalid("email", "Email sudah terdaftar"), http.StatusBadRequest, "Email sudah terdaftar"},
		{apperr.BadRequest("Format data tidak valid"), http.StatusBadRequest, "Format data tidak valid"},
		{apperr.Unauthenticated("no token"), http.StatusUnauthorized, "no token"},
		{apperr.InvalidToken("bad token"), http.StatusUnauthorized, "bad token"},
		{apperr.Forbidden("nope"), http.StatusForbidden, "nope"},
		{fmt.Errorf("lookup: %w", apperr.NotFound("Proyek tidak ditemukan")), http.StatusNotFound, "Proyek tidak ditemukan"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "Gagal membuat proyek"},
	}
	rs := NewResponder(false)
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		rs.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "Gagal membuat proyek")

		if rec.Code != tt.status {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.status, rec.Code)
		}
		var env Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if env.Success || env.Message != tt.message {
			t.Errorf("%v: expected message %q, got %+v", tt.err, tt.message, env)
		}
		if env.Error != "" {
			t.Errorf("%v: raw error exposed: %q", tt.err, env.Error)
		}
	}
}

func TestErrorExposure(t *testing.T) {
	t.Parallel()

	for _, expose := range []bool{true, false} {
		rec := httptest.NewRecorder()
		NewResponder(expose).Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("disk on fire"), "Gagal")

		var env Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if got := env.Error != ""; got != expose {
			t.Errorf("expose=%v: unexpected error field %q", expose, env.Error)
		}
	}
}

func TestValidationEnvelopeListsFields(t *testing.T) {
	t.Parallel()

	v := &apperr.ValidationError{}
	v.Add("title", "Judul tugas wajib diisi")
	v.Add("description", "Deskripsi tugas wajib diisi")

	rec := httptest.NewRecorder()
	NewResponder(true).Error(rec, httptest.NewRequest(http.MethodPost, "/", nil), v, "Gagal")

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(env.Errors) != 2 || env.Errors["title"] != "Judul tugas wajib diisi" {
		t.Errorf("unexpected fields %v", env.Errors)
	}
}
