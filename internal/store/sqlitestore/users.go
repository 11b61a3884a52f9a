package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
)

// UserStore persists users in the users table.
type UserStore struct {
	db *sql.DB
}

const userColumns = "id, name, email, password_hash, avatar, role, created_at"

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, store.ErrUserNotFound
	}
	return u, err
}

// Create inserts a new user. The password must already be hashed.
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = nowUTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users("+userColumns+") VALUES(?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.Avatar, string(u.Role), u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, store.ErrEmailTaken()
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// FindByID retrieves a single user by ID.
func (s *UserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// FindByEmail retrieves a single user by email, including the password hash.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// Find lists every user.
func (s *UserStore) Find(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update overwrites the mutable fields of u.
func (s *UserStore) Update(ctx context.Context, u models.User) (models.User, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, password_hash = ?, avatar = ?, role = ? WHERE id = ?",
		u.Name, u.Email, u.PasswordHash, u.Avatar, string(u.Role), u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, store.ErrEmailTaken()
		}
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	if err := affectedOrNotFound(res, store.ErrUserNotFound); err != nil {
		return models.User{}, err
	}
	return s.FindByID(ctx, u.ID)
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, store.ErrUserNotFound)
}

// AvatarsInUse lists the distinct avatar names referenced by users.
func (s *UserStore) AvatarsInUse(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT avatar FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var avatars []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		avatars = append(avatars, a)
	}
	return avatars, rows.Err()
}
