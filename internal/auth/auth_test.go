package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
)

type fakeUsers map[string]models.User

func (f fakeUsers) FindByID(_ context.Context, id string) (models.User, error) {
	u, ok := f[id]
	if !ok {
		return models.User{}, apperr.NotFound("Pengguna tidak ditemukan")
	}
	return u, nil
}

// recordError captures the error handed to the ErrorWriter.
type recordError struct{ err error }

func (rec *recordError) write(w http.ResponseWriter, _ *http.Request, err error) {
	rec.err = err
	w.WriteHeader(http.StatusUnauthorized)
}

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Generate(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "u1" || claims.Subject != "u1" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := issuer.Generate(models.User{}); err == nil {
		t.Error("expected error for user without id")
	}
}

func TestValidateRejectsWrongSecretAndExpiry(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	forged, err := other.Generate(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := issuer.Validate(forged); err == nil {
		t.Error("expected wrong-secret token to fail")
	}

	past := NewTokenIssuer("secret", time.Hour)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := past.Generate(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := issuer.Validate(expired); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected expired error, got %v", err)
	}
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer("secret", time.Hour).Validate(signed); err == nil {
		t.Error("expected HS512 token to be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"", "", true},
		{"Bearer ", "", true},
		{"bearer abc", "", true},
		{"Token abc", "", true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr {
			if !errors.Is(err, apperr.ErrUnauthenticated) {
				t.Errorf("BearerToken(%q): expected unauthenticated, got %v", tt.header, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestProtect(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	users := fakeUsers{"u1": {ID: "u1", Name: "Budi", Role: models.RoleUser}}
	valid, _ := issuer.Generate(models.User{ID: "u1"})
	orphan, _ := issuer.Generate(models.User{ID: "deleted"})
	forged, _ := NewTokenIssuer("wrong", time.Hour).Generate(models.User{ID: "u1"})

	tests := []struct {
		name     string
		header   string
		query    string
		ws       bool
		wantKind error
	}{
		{"valid header", "Bearer " + valid, "", false, nil},
		{"missing header", "", "", false, apperr.ErrUnauthenticated},
		{"malformed header", valid, "", false, apperr.ErrUnauthenticated},
		{"wrong secret", "Bearer " + forged, "", false, apperr.ErrInvalidToken},
		{"deleted user", "Bearer " + orphan, "", false, apperr.ErrInvalidToken},
		{"query token ignored on http", "", valid, false, apperr.ErrUnauthenticated},
		{"query token on websocket", "", valid, true, nil},
	}
	for _, tt := range tests {
		rec := &recordError{}
		v := NewVerifier(issuer, users, rec.write)

		var seen models.User
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = UserFromContext(r.Context())
		})
		h := v.Protect(next)
		if tt.ws {
			h = v.ProtectWebSocket(next)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		if tt.query != "" {
			req = httptest.NewRequest(http.MethodGet, "/api/ws?token="+tt.query, nil)
		}
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)

		if tt.wantKind == nil {
			if rec.err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, rec.err)
			}
			if seen.ID != "u1" {
				t.Errorf("%s: expected user u1 in context, got %+v", tt.name, seen)
			}
			continue
		}
		if !errors.Is(rec.err, tt.wantKind) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.wantKind, rec.err)
		}
		if seen.ID != "" {
			t.Errorf("%s: handler must not run on failure", tt.name)
		}
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	rec := &recordError{}
	v := NewVerifier(NewTokenIssuer("secret", time.Hour), fakeUsers{}, rec.write)
	called := false
	h := v.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = req.WithContext(WithUser(req.Context(), models.User{ID: "u1", Role: models.RoleUser}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if called || !errors.Is(rec.err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for user role, got called=%v err=%v", called, rec.err)
	}
	if rec.err.Error() != "Role user tidak diizinkan untuk akses ini" {
		t.Errorf("unexpected message %q", rec.err.Error())
	}

	rec.err = nil
	req = req.WithContext(WithUser(req.Context(), models.User{ID: "a1", Role: models.RoleAdmin}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !called || rec.err != nil {
		t.Errorf("expected admin to pass, got called=%v err=%v", called, rec.err)
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("rahasia123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "rahasia123" {
		t.Fatal("hash must differ from the raw password")
	}
	if !CheckPassword(hash, "rahasia123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "salah") {
		t.Error("expected mismatch")
	}
}
