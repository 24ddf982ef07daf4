package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type fakeVerifier struct {
	userID int64
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (int64, error) {
	return f.userID, f.err
}

type fakeResolver struct {
	users map[int64]*AuthUser
}

func (f *fakeResolver) ResolveUser(
	_ context.Context,
	id int64,
) (*AuthUser, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return user, nil
}

func identityEcho(t *testing.T, gotID *int64, gotRole *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotID = GetUserID(r.Context())
		*gotRole = GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorResolvesUser(t *testing.T) {
	verifier := &fakeVerifier{userID: 7}
	resolver := &fakeResolver{users: map[int64]*AuthUser{
		7: {ID: 7, Name: "Ana", Email: "ana@ifpr.edu.br", Role: "professor"},
	}}

	var gotID int64
	var gotRole string
	handler := Authenticator(verifier, resolver)(
		identityEcho(t, &gotID, &gotRole))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotID != 7 || gotRole != "professor" {
		t.Fatalf("identity not propagated: id=%d role=%q", gotID, gotRole)
	}
}

func TestAuthenticatorRejectsMissingToken(t *testing.T) {
	handler := Authenticator(&fakeVerifier{}, &fakeResolver{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthenticatorRejectsDeletedUser(t *testing.T) {
	// Token verifies but the account no longer exists.
	verifier := &fakeVerifier{userID: 9}
	resolver := &fakeResolver{users: map[int64]*AuthUser{}}

	handler := Authenticator(verifier, resolver)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestOptionalAuthPassesWithoutToken(t *testing.T) {
	var gotID int64
	var gotRole string
	handler := OptionalAuth(&fakeVerifier{}, &fakeResolver{})(
		identityEcho(t, &gotID, &gotRole))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotID != 0 {
		t.Fatalf("anonymous request got identity %d", gotID)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin passes", "admin", http.StatusOK},
		{"professor forbidden", "professor", http.StatusForbidden},
		{"aluno forbidden", "aluno", http.StatusForbidden},
		{"anonymous unauthorized", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdmin(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				ctx := context.WithValue(req.Context(), UserRoleKey, tt.role)
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := ExtractToken(req); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
