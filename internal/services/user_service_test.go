package services

import (
	"context"
	"testing"

	"github.com/isdelr/taskflow-be/internal/models"
)

func TestRegisterDefaultsAndHidesHash(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	u := f.register(t, "  Budi  ", "budi@example.com")
	if u.Name != "Budi" {
		t.Errorf("expected trimmed name, got %q", u.Name)
	}
	if u.Role != models.RoleUser || u.Avatar != models.DefaultAvatar {
		t.Errorf("unexpected defaults: role %q avatar %q", u.Role, u.Avatar)
	}
	if u.PasswordHash != "" {
		t.Error("password hash leaked from Register")
	}
	if f.notifier.count() != 1 {
		t.Errorf("expected one published event, got %d", f.notifier.count())
	}
}

func TestRegisterDuplicateEmailDiscardsAvatar(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "Budi", "budi@example.com")

	_, err := f.users.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "budi@example.com", Password: "secret123", Avatar: "123-me.png",
	})
	wantField(t, err, "email")
	if !f.remover.has("123-me.png") {
		t.Error("expected the uploaded avatar to be removed")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		in    RegisterInput
		field string
	}{
		{RegisterInput{Name: "A", Email: "a@example.com", Password: "123"}, "password"},
		{RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"}, "email"},
		{RegisterInput{Name: " ", Email: "a@example.com", Password: "secret123"}, "name"},
	}
	for _, tt := range tests {
		_, err := f.users.Register(context.Background(), tt.in)
		wantField(t, err, tt.field)
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "Budi", "budi@example.com")
	ctx := context.Background()

	u, err := f.users.Authenticate(ctx, "budi@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.PasswordHash != "" {
		t.Error("password hash leaked from Authenticate")
	}

	if _, err := f.users.Authenticate(ctx, "budi@example.com", "wrong"); err != ErrBadCredentials {
		t.Errorf("expected bad credentials for wrong password, got %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "nobody@example.com", "secret123"); err != ErrBadCredentials {
		t.Errorf("expected bad credentials for unknown email, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	u := f.register(t, "Budi", "budi@example.com")
	ctx := context.Background()

	wantField(t, f.users.UpdatePassword(ctx, u.ID, "wrong", "newsecret"), "currentPassword")
	wantField(t, f.users.UpdatePassword(ctx, u.ID, "secret123", "123"), "password")

	if err := f.users.UpdatePassword(ctx, u.ID, "secret123", "newsecret"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "budi@example.com", "newsecret"); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}

func TestUpdateProfileReplacesAvatar(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	u := f.register(t, "Budi", "budi@example.com")
	ctx := context.Background()

	first := "1-first.png"
	if _, err := f.users.UpdateProfile(ctx, u.ID, models.ProfilePatch{Avatar: &first}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	second := "2-second.png"
	name := "Budi Santoso"
	updated, err := f.users.UpdateProfile(ctx, u.ID, models.ProfilePatch{Name: &name, Avatar: &second})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Avatar != second || updated.Name != name || updated.Email != "budi@example.com" {
		t.Errorf("unexpected profile %+v", updated)
	}
	if !f.remover.has(first) {
		t.Error("expected the replaced avatar to be removed")
	}
	if f.remover.has(second) {
		t.Error("current avatar should not be removed")
	}
}

func TestDeleteUserRemovesAvatar(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.users.Register(ctx, RegisterInput{Name: "Budi", Email: "budi@example.com", Password: "secret123", Avatar: "1-me.png"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := f.users.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !f.remover.has("1-me.png") {
		t.Error("expected avatar removal")
	}
	if _, err := f.users.GetUserByID(ctx, u.ID); err == nil {
		t.Error("expected deleted user to be gone")
	}
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	created := f.admin(t)
	if !created.IsAdmin() {
		t.Fatalf("expected admin role, got %q", created.Role)
	}
	again := f.admin(t)
	if again.ID != created.ID {
		t.Error("EnsureAdmin should be idempotent")
	}

	u := f.register(t, "Budi", "budi@example.com")
	promoted, err := f.users.EnsureAdmin(ctx, "ignored", "budi@example.com", "ignored")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if promoted.ID != u.ID || !promoted.IsAdmin() {
		t.Errorf("expected %s promoted to admin, got %+v", u.ID, promoted)
	}
	if _, err := f.users.Authenticate(ctx, "budi@example.com", "secret123"); err != nil {
		t.Errorf("promotion should keep the password, got %v", err)
	}
}
