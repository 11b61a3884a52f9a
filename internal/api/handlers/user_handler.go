package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/taskflow-be/internal/auth"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
	issuer  *auth.TokenIssuer
	avatars AvatarSaver
	res     *Responder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, issuer *auth.TokenIssuer, avatars AvatarSaver, res *Responder) *UserHandler {
	return &UserHandler{service: service, issuer: issuer, avatars: avatars, res: res}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordPayload defines the structure for password change requests.
type PasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register handles new user registration from a multipart form with an
// optional avatar, or from a JSON body.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal mendaftarkan pengguna"

	var payload services.RegisterInput
	if isMultipart(r) {
		if err := parseMultipart(w, r, h.avatars); err != nil {
			h.res.Error(w, r, err, failure)
			return
		}
		defer r.MultipartForm.RemoveAll()
		payload.Name = r.FormValue("name")
		payload.Email = r.FormValue("email")
		payload.Password = r.FormValue("password")

		avatar, err := saveAvatar(r, h.avatars)
		if err != nil {
			h.res.Error(w, r, err, failure)
			return
		}
		payload.Avatar = avatar
	} else if err := decodeJSON(w, r, &payload); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal masuk"

	var payload AuthPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if err == services.ErrBadCredentials {
			log.Warn().Str("request_id", requestID(r)).Msg("Failed authentication attempt")
		}
		h.res.Error(w, r, err, failure)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user models.User) {
	token, err := h.issuer.Generate(user)
	if err != nil {
		h.res.Error(w, r, err, "Gagal membuat token")
		return
	}
	h.res.JSON(w, status, Envelope{Success: true, Token: token, Data: user})
}

// GetMe retrieves the currently authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal mendapatkan data pengguna"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	user, err := h.service.GetUserByID(r.Context(), me.ID)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusOK, user)
}

// UpdateMe handles updating the current user's name, email and avatar.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal memperbarui data pengguna"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	var patch models.ProfilePatch
	if isMultipart(r) {
		if err := parseMultipart(w, r, h.avatars); err != nil {
			h.res.Error(w, r, err, failure)
			return
		}
		defer r.MultipartForm.RemoveAll()
		patch.Name = formValue(r, "name")
		patch.Email = formValue(r, "email")

		avatar, err := saveAvatar(r, h.avatars)
		if err != nil {
			h.res.Error(w, r, err, failure)
			return
		}
		if avatar != "" {
			patch.Avatar = &avatar
		}
	} else if err := decodeJSON(w, r, &patch); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), me.ID, patch)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.OK(w, http.StatusOK, user)
}

// ChangePassword handles changing the current user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal mengubah password"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	var payload PasswordPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), me.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.JSON(w, http.StatusOK, Envelope{Success: true, Message: "Password berhasil diubah"})
}

// DeleteMe handles the permanent deletion of the current user's account.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	const failure = "Gagal menghapus pengguna"

	me, err := currentUser(r)
	if err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	if err := h.service.DeleteUser(r.Context(), me.ID); err != nil {
		h.res.Error(w, r, err, failure)
		return
	}
	h.res.JSON(w, http.StatusOK, Envelope{Success: true, Message: "Pengguna berhasil dihapus"})
}

// GetAll lists every user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetUsers(r.Context())
	if err != nil {
		h.res.Error(w, r, err, "Gagal mendapatkan daftar pengguna")
		return
	}
	h.res.List(w, users, len(users))
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.res.Error(w, r, err, "Gagal mendapatkan data pengguna")
		return
	}
	h.res.OK(w, http.StatusOK, user)
}
