package auth

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/repotec-dev/repotec-api/internal/config"
	"github.com/repotec-dev/repotec-api/internal/core"
)

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	if err := GenerateKeyPair(privPath, pubPath); err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privPath,
		PublicKeyPath:     pubPath,
		AccessTokenExpire: time.Hour,
		Issuer:            "repotec-api",
		Audience:          "repotec",
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	return manager
}

type fakeResetRepo struct {
	tokens map[string]*PasswordResetToken
	nextID int64
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*PasswordResetToken{}}
}

func (f *fakeResetRepo) Create(
	_ context.Context,
	token *PasswordResetToken,
) error {
	f.nextID++
	token.ID = f.nextID
	token.CreatedAt = time.Now()
	f.tokens[token.TokenHash] = token
	return nil
}

func (f *fakeResetRepo) FindByHash(
	_ context.Context,
	hash string,
) (*PasswordResetToken, error) {
	token, ok := f.tokens[hash]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *token
	return &copied, nil
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id int64) error {
	for _, token := range f.tokens {
		if token.ID == id && !token.Used {
			token.Used = true
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeUsers struct {
	byEmail   map[string]*UserInfo
	nextID    int64
	passwords map[int64]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:   map[string]*UserInfo{},
		passwords: map[int64]string{},
	}
}

func (f *fakeUsers) add(name, email, password, role string) *UserInfo {
	hash, _ := core.HashPassword(password)
	f.nextID++
	user := &UserInfo{
		ID:           f.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	f.byEmail[email] = user
	return user
}

func (f *fakeUsers) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*UserInfo, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) Create(
	_ context.Context,
	name, email, passwordHash, role string,
) (*UserInfo, error) {
	if _, exists := f.byEmail[email]; exists {
		return nil, core.ErrDuplicateKey
	}
	f.nextID++
	user := &UserInfo{
		ID:           f.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	f.byEmail[email] = user
	return user, nil
}

func (f *fakeUsers) UpdatePassword(
	_ context.Context,
	userID int64,
	passwordHash string,
) error {
	f.passwords[userID] = passwordHash
	return nil
}

type fakeDomains struct {
	allowed []string
}

func (f *fakeDomains) IsAllowed(_ context.Context, email string) (bool, error) {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return false, nil
	}
	for _, d := range f.allowed {
		if d == strings.ToLower(domain) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDomains) ActiveDomains(
	_ context.Context,
	limit int,
) ([]string, error) {
	if len(f.allowed) > limit {
		return f.allowed[:limit], nil
	}
	return f.allowed, nil
}

type fakeMailer struct {
	resetLinks chan string
	welcomes   chan string
	testErr    error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		resetLinks: make(chan string, 1),
		welcomes:   make(chan string, 1),
	}
}

func (f *fakeMailer) SendWelcome(_ context.Context, _, email string) error {
	f.welcomes <- email
	return nil
}

func (f *fakeMailer) SendPasswordReset(
	_ context.Context,
	_, _, resetLink string,
) error {
	f.resetLinks <- resetLink
	return nil
}

func (f *fakeMailer) SendTest(_ context.Context, _ string) error {
	return f.testErr
}

type authFixture struct {
	svc    *Service
	repo   *fakeResetRepo
	users  *fakeUsers
	mailer *fakeMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	repo := newFakeResetRepo()
	users := newFakeUsers()
	mailer := newFakeMailer()
	domains := &fakeDomains{allowed: []string{"ifpr.edu.br", "example.com"}}

	svc := NewService(
		repo,
		newTestJWT(t),
		users,
		domains,
		mailer,
		"http://localhost:5173/",
		slog.New(slog.DiscardHandler),
	)

	return &authFixture{svc: svc, repo: repo, users: users, mailer: mailer}
}

func TestRegisterRejectsUnknownDomain(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Nome:  "Ana",
		Email: "ana@gmail.com",
		Senha: "senha!123",
	})
	if err == nil {
		t.Fatal("expected registration to fail")
	}

	var appErr *core.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if !strings.Contains(appErr.Message, "ifpr.edu.br") {
		t.Fatalf("error should name allowed domains, got %q", appErr.Message)
	}
}

func TestRegisterDefaultsToAluno(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Register(context.Background(), RegisterRequest{
		Nome:  "Ana",
		Email: "ana@ifpr.edu.br",
		Senha: "senha!123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if resp.Usuario.Tipo != "aluno" {
		t.Fatalf("expected default role aluno, got %q", resp.Usuario.Tipo)
	}
	if resp.Token == "" {
		t.Fatal("expected access token")
	}

	select {
	case email := <-f.mailer.welcomes:
		if email != "ana@ifpr.edu.br" {
			t.Fatalf("welcome mail sent to %q", email)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("welcome mail was not sent")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Nome:  "Outra Ana",
		Email: "ana@ifpr.edu.br",
		Senha: "senha!123",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.users.add("Ana", "ana@ifpr.edu.br", "senha!123", "professor")

	resp, err := f.svc.Login(context.Background(), LoginRequest{
		Email: "ana@ifpr.edu.br",
		Senha: "senha!123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Usuario.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, resp.Usuario.ID)
	}

	_, err = f.svc.Login(context.Background(), LoginRequest{
		Email: "ana@ifpr.edu.br",
		Senha: "senha-errada!",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = f.svc.Login(context.Background(), LoginRequest{
		Email: "ninguem@ifpr.edu.br",
		Senha: "senha!123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRecoverPasswordNeutralForUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.RecoverPassword(
		context.Background(), "ninguem@ifpr.edu.br")
	if err != nil {
		t.Fatalf("RecoverPassword: %v", err)
	}
	if resp.Message != recoveryNeutralMessage {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if len(f.repo.tokens) != 0 {
		t.Fatal("no token should be stored for unknown accounts")
	}
}

func TestRecoverPasswordStoresHashedToken(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")

	resp, err := f.svc.RecoverPassword(context.Background(), "ana@ifpr.edu.br")
	if err != nil {
		t.Fatalf("RecoverPassword: %v", err)
	}
	if resp.Message != recoveryNeutralMessage {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	var link string
	select {
	case link = <-f.mailer.resetLinks:
	case <-time.After(2 * time.Second):
		t.Fatal("reset mail was not sent")
	}

	if !strings.HasPrefix(link, "http://localhost:5173/redefinir-senha?token=") {
		t.Fatalf("unexpected reset link %q", link)
	}

	rawToken := strings.TrimPrefix(
		link, "http://localhost:5173/redefinir-senha?token=")
	stored, ok := f.repo.tokens[core.HashToken(rawToken)]
	if !ok {
		t.Fatal("token stored under a different hash than the mailed token")
	}
	if stored.TokenHash == rawToken {
		t.Fatal("raw token must not be stored")
	}
	if time.Until(stored.ExpiresAt) > 24*time.Hour {
		t.Fatal("token TTL exceeds 24h")
	}
}

func TestResetPasswordTokenChecks(t *testing.T) {
	f := newAuthFixture(t)
	user := f.users.add("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")

	expired := &PasswordResetToken{
		UserID:    user.ID,
		TokenHash: core.HashToken("expired-token"),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	used := &PasswordResetToken{
		UserID:    user.ID,
		TokenHash: core.HashToken("used-token"),
		ExpiresAt: time.Now().Add(time.Hour),
		Used:      true,
	}
	good := &PasswordResetToken{
		UserID:    user.ID,
		TokenHash: core.HashToken("good-token"),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	// A token both expired and used reports expiry first.
	both := &PasswordResetToken{
		UserID:    user.ID,
		TokenHash: core.HashToken("expired-used-token"),
		ExpiresAt: time.Now().Add(-time.Minute),
		Used:      true,
	}
	for _, token := range []*PasswordResetToken{expired, used, good, both} {
		if err := f.repo.Create(context.Background(), token); err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}

	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{"unknown", "missing-token", "Token de recuperação inválido ou expirado."},
		{"expired", "expired-token", "Token de recuperação expirado."},
		{"used", "used-token", "Token de recuperação já foi usado."},
		{"expired and used", "expired-used-token", "Token de recuperação expirado."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{
				Password: "nova-senha!1",
				Token:    tt.token,
			})
			var appErr *core.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Message != tt.wantMsg {
				t.Fatalf("got %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}

	resp, err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Password: "nova-senha!1",
		Token:    "good-token",
	})
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if resp.Message != "Senha redefinida com sucesso." {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	if _, ok := f.users.passwords[user.ID]; !ok {
		t.Fatal("password was not updated")
	}
	if !f.repo.tokens[core.HashToken("good-token")].Used {
		t.Fatal("token was not marked used")
	}

	// Second use of the same token fails.
	_, err = f.svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Password: "outra-senha!1",
		Token:    "good-token",
	})
	if err == nil {
		t.Fatal("reused token must be rejected")
	}
}

func TestValidateRecoveryToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.users.add("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")

	good := &PasswordResetToken{
		UserID:    user.ID,
		TokenHash: core.HashToken("good-token"),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := f.repo.Create(context.Background(), good); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	resp, err := f.svc.ValidateRecoveryToken(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("ValidateRecoveryToken: %v", err)
	}
	if !resp.Valido || resp.Message != "Token válido" {
		t.Fatalf("unexpected response %+v", resp)
	}

	// Validation has no side effects.
	if f.repo.tokens[core.HashToken("good-token")].Used {
		t.Fatal("validation must not consume the token")
	}

	_, err = f.svc.ValidateRecoveryToken(context.Background(), "missing")
	var appErr *core.AppError
	if !errors.As(err, &appErr) || appErr.Message != "Token inválido" {
		t.Fatalf("expected Token inválido, got %v", err)
	}
}

func TestTestEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp := f.svc.TestEmail(context.Background(), "admin@ifpr.edu.br")
	if !resp.Sucesso {
		t.Fatalf("expected success, got %+v", resp)
	}

	f.mailer.testErr = errors.New("smtp down")
	resp = f.svc.TestEmail(context.Background(), "admin@ifpr.edu.br")
	if resp.Sucesso {
		t.Fatal("expected failure to be reported")
	}
	if !strings.Contains(resp.Mensagem, "Falha") {
		t.Fatalf("unexpected message %q", resp.Mensagem)
	}
}
