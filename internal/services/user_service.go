package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/auth"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
	"github.com/rs/zerolog/log"
)

// ErrBadCredentials is returned by Authenticate for an unknown email or a wrong password.
var ErrBadCredentials = apperr.Unauthenticated("Email atau password salah")

// RegisterInput carries the fields of a registration request. Avatar is the
// name of an already stored upload, or empty.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"-"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (models.User, error)
	UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error
	DeleteUser(ctx context.Context, id string) error
	EnsureAdmin(ctx context.Context, name, email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	users   store.UserStore
	avatars FileRemover
	events  EventServiceProvider
	timeout time.Duration
}

// NewUserService creates a new UserService. avatars may be nil.
func NewUserService(users store.UserStore, avatars FileRemover, events EventServiceProvider, timeout time.Duration) *UserService {
	return &UserService{users: users, avatars: avatars, events: events, timeout: timeout}
}

// Register validates and creates a regular user, hashing their password.
// A stored avatar is discarded when the user cannot be created.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	user, err := s.create(ctx, models.User{Name: in.Name, Email: in.Email, Avatar: in.Avatar, Role: models.RoleUser}, in.Password)
	if err != nil {
		s.removeAvatar(in.Avatar)
		return models.User{}, err
	}

	s.events.Record(ctx, models.Event{
		Type:    "user.register",
		Message: fmt.Sprintf("Pengguna %s terdaftar", user.Name),
		ActorID: user.ID,
	}, user.ID)
	return user, nil
}

func (s *UserService) create(ctx context.Context, user models.User, password string) (models.User, error) {
	user.Normalize()
	if err := models.ValidatePassword(password); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = hash
	if err := user.Validate(); err != nil {
		return models.User{}, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err = s.users.Create(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	return withoutSecrets(user), nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, apperr.BadRequest("Email dan password wajib diisi")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, ErrBadCredentials
		}
		return models.User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return models.User{}, ErrBadCredentials
	}
	return withoutSecrets(user), nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return withoutSecrets(user), nil
}

// GetUsers lists every user.
func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	users, err := s.users.Find(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = withoutSecrets(users[i])
	}
	return users, nil
}

// UpdateProfile applies patch to the user's name, email and avatar. The
// replaced avatar file is removed once the update is stored; a new avatar
// is removed if the update fails.
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (models.User, error) {
	newAvatar := ""
	if patch.Avatar != nil {
		newAvatar = *patch.Avatar
	}

	user, err := s.updateProfile(ctx, id, patch)
	if err != nil {
		s.removeAvatar(newAvatar)
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) updateProfile(ctx context.Context, id string, patch models.ProfilePatch) (models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	oldAvatar := user.Avatar

	patch.Apply(&user)
	user.Normalize()
	if err := user.Validate(); err != nil {
		return models.User{}, err
	}

	user, err = s.users.Update(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	if user.Avatar != oldAvatar {
		s.removeAvatar(oldAvatar)
	}
	return withoutSecrets(user), nil
}

// UpdatePassword verifies the current password, then hashes and sets a new password for a user.
func (s *UserService) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return apperr.Invalid("currentPassword", "Password saat ini salah")
	}
	if err := models.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}
	return nil
}

// DeleteUser removes a user and their avatar file. Projects and tasks that
// reference the user are kept and populate to null.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.removeAvatar(user.Avatar)
	return nil
}

// EnsureAdmin makes sure an admin account exists for email. A missing
// account is created; an existing regular account is promoted and keeps
// its password.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (models.User, error) {
	lookupCtx, cancel := withTimeout(ctx, s.timeout)
	existing, err := s.users.FindByEmail(lookupCtx, strings.TrimSpace(email))
	cancel()

	switch {
	case err == nil:
		if existing.IsAdmin() {
			return withoutSecrets(existing), nil
		}
		existing.Role = models.RoleAdmin
		updateCtx, cancel := withTimeout(ctx, s.timeout)
		defer cancel()
		user, err := s.users.Update(updateCtx, existing)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to promote admin: %w", err)
		}
		log.Info().Str("user_id", user.ID).Msg("Promoted existing user to admin")
		return withoutSecrets(user), nil
	case errors.Is(err, apperr.ErrNotFound):
		user, err := s.create(ctx, models.User{Name: name, Email: email, Role: models.RoleAdmin}, password)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to create admin: %w", err)
		}
		log.Info().Str("user_id", user.ID).Msg("Created admin user")
		return user, nil
	default:
		return models.User{}, err
	}
}

func (s *UserService) removeAvatar(name string) {
	if s.avatars == nil || name == "" {
		return
	}
	if err := s.avatars.Remove(name); err != nil {
		log.Warn().Err(err).Str("avatar", name).Msg("Failed to remove avatar file")
	}
}

// withoutSecrets drops the password hash before a user leaves the service.
func withoutSecrets(u models.User) models.User {
	u.PasswordHash = ""
	return u
}
