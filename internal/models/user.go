package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/isdelr/taskflow-be/internal/apperr"
)

// Role is the coarse authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultAvatar is assigned to users who never uploaded one.
const DefaultAvatar = "default-avatar.jpg"

// Password length bounds. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"` // Never expose this to the client
	Avatar       string    `json:"avatar" bson:"avatar"`
	Role         Role      `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the populated form embedded in projects and tasks.
func (u User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// Normalize trims input and fills defaults before validation.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
}

// Validate checks the schema constraints of a user record.
func (u User) Validate() error {
	v := &apperr.ValidationError{}
	if u.Name == "" {
		v.Add("name", "Nama wajib diisi")
	}
	switch {
	case u.Email == "":
		v.Add("email", "Email wajib diisi")
	case !emailPattern.MatchString(u.Email):
		v.Add("email", "Email tidak valid")
	}
	if u.PasswordHash == "" {
		v.Add("password", "Password wajib diisi")
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		v.Add("role", "Role tidak valid")
	}
	return v.OrNil()
}

// ValidatePassword checks a raw password before it is hashed.
func ValidatePassword(raw string) error {
	if raw == "" {
		return apperr.Invalid("password", "Password wajib diisi")
	}
	if len(raw) < MinPasswordLength {
		return apperr.Invalid("password", "Password minimal 6 karakter")
	}
	if len(raw) > MaxPasswordLength {
		return apperr.Invalid("password", "Password maksimal 72 karakter")
	}
	return nil
}

// UserSummary is the subset of user fields returned when a reference is populated.
type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// ProfilePatch carries the optional fields of a profile update.
type ProfilePatch struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"-"`
}

// Apply copies the supplied fields onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}
