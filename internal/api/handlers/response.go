package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// Envelope is the body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Token   string            `json:"token,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Responder writes envelopes and maps errors to status codes.
type Responder struct {
	exposeErrors bool
}

// NewResponder creates a Responder. With exposeErrors, 500 responses carry
// the raw error text.
func NewResponder(exposeErrors bool) *Responder {
	return &Responder{exposeErrors: exposeErrors}
}

// JSON writes env with status.
func (rs *Responder) JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// OK writes a successful envelope around data.
func (rs *Responder) OK(w http.ResponseWriter, status int, data interface{}) {
	rs.JSON(w, status, Envelope{Success: true, Data: data})
}

// List writes a successful envelope around items with their count.
func (rs *Responder) List(w http.ResponseWriter, items interface{}, count int) {
	rs.JSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: items})
}

// Error converts err into an error envelope. failure is the message used
// when err is not one of the known client errors.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		rs.JSON(w, http.StatusBadRequest, Envelope{Message: verr.Error(), Errors: verr.Fields})
		return
	}

	status := statusOf(err)
	if status != http.StatusInternalServerError {
		rs.JSON(w, status, Envelope{Message: clientMessage(err)})
		return
	}

	log.Error().Err(err).
		Str("request_id", requestID(r)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(failure)
	env := Envelope{Message: failure}
	if rs.exposeErrors {
		env.Error = err.Error()
	}
	rs.JSON(w, http.StatusInternalServerError, env)
}

// Fail is Error with a generic failure message, for middleware.
func (rs *Responder) Fail(w http.ResponseWriter, r *http.Request, err error) {
	rs.Error(w, r, err, "Terjadi kesalahan pada server")
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated), errors.Is(err, apperr.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// clientMessage is the message of the outermost apperr.Error in err's chain.
func clientMessage(err error) string {
	var aerr *apperr.Error
	if errors.As(err, &aerr) {
		return aerr.Message
	}
	return err.Error()
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.BadRequest("Ukuran permintaan terlalu besar")
		}
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("Data permintaan kosong")
		}
		return apperr.BadRequest("Format data tidak valid")
	}
	return nil
}
