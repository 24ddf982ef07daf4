package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/repotec-dev/repotec-api/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

const (
	resetTokenTTL = 24 * time.Hour

	// Same answer whether or not the account exists, to avoid
	// enumeration through the recovery endpoint.
	recoveryNeutralMessage = "Se o email estiver cadastrado, você receberá " +
		"as instruções para recuperação de senha."

	mailTimeout = 30 * time.Second
)

type UserInfo struct {
	ID              int64
	Name            string
	Email           string
	PasswordHash    string
	Role            string
	ProfileImageID  *int64
	ProfileImageURL *string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(
		ctx context.Context,
		name, email, passwordHash, role string,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type DomainChecker interface {
	IsAllowed(ctx context.Context, email string) (bool, error)
	ActiveDomains(ctx context.Context, limit int) ([]string, error)
}

type Mailer interface {
	SendWelcome(ctx context.Context, nome, email string) error
	SendPasswordReset(ctx context.Context, nome, email, resetLink string) error
	SendTest(ctx context.Context, email string) error
}

type Service struct {
	repo        Repository
	jwt         *JWTManager
	users       UserProvider
	domains     DomainChecker
	mailer      Mailer
	frontendURL string
	logger      *slog.Logger
}

func NewService(
	repo Repository,
	jwtManager *JWTManager,
	users UserProvider,
	domains DomainChecker,
	mailer Mailer,
	frontendURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		jwt:         jwtManager,
		users:       users,
		domains:     domains,
		mailer:      mailer,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	allowed, err := s.domains.IsAllowed(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email domain: %w", err)
	}

	if !allowed {
		domains, err := s.domains.ActiveDomains(ctx, 5)
		if err != nil {
			return nil, fmt.Errorf("list allowed domains: %w", err)
		}
		return nil, core.UnauthorizedError(fmt.Sprintf(
			"Domínio de email não permitido. Domínios permitidos: %s",
			strings.Join(domains, ", "),
		))
	}

	passwordHash, err := core.HashPassword(req.Senha)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tipo := req.Tipo
	if tipo == "" {
		tipo = "aluno"
	}

	user, err := s.users.Create(ctx, req.Nome, req.Email, passwordHash, tipo)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendMailAsync("welcome mail", user.Email, func(ctx context.Context) error {
		return s.mailer.SendWelcome(ctx, user.Name, user.Email)
	})

	return s.createAuthResponse(user)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Senha, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Senha,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.createAuthResponse(user)
}

// RenewToken issues a fresh access token for an already-authenticated user.
func (s *Service) RenewToken(userID int64) (*TokenResponse, error) {
	token, err := s.jwt.CreateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &TokenResponse{Token: token}, nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID int64,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := userResponse(user)
	return &resp, nil
}

func (s *Service) RecoverPassword(
	ctx context.Context,
	email string,
) (*MessageResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return &MessageResponse{Message: recoveryNeutralMessage}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	rawToken, err := core.GenerateResetToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	resetToken := &PasswordResetToken{
		UserID:    user.ID,
		TokenHash: core.HashToken(rawToken),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}

	if err := s.repo.Create(ctx, resetToken); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	resetLink := fmt.Sprintf(
		"%s/redefinir-senha?token=%s",
		strings.TrimSuffix(s.frontendURL, "/"),
		url.QueryEscape(rawToken),
	)

	s.sendMailAsync("reset mail", user.Email, func(ctx context.Context) error {
		return s.mailer.SendPasswordReset(ctx, user.Name, user.Email, resetLink)
	})

	return &MessageResponse{Message: recoveryNeutralMessage}, nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	req ResetPasswordRequest,
) (*MessageResponse, error) {
	token, err := s.repo.FindByHash(ctx, core.HashToken(req.Token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ValidationError(
				"Token de recuperação inválido ou expirado.",
			)
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	if token.IsExpired() {
		return nil, core.ValidationError("Token de recuperação expirado.")
	}

	if token.Used {
		return nil, core.ValidationError(
			"Token de recuperação já foi usado.",
		)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, token.UserID, passwordHash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	if err := s.repo.MarkUsed(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("mark token used: %w", err)
	}

	return &MessageResponse{Message: "Senha redefinida com sucesso."}, nil
}

func (s *Service) ValidateRecoveryToken(
	ctx context.Context,
	rawToken string,
) (*ValidateTokenResponse, error) {
	token, err := s.repo.FindByHash(ctx, core.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ValidationError("Token inválido")
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	if token.IsExpired() {
		return nil, core.ValidationError("Token expirado")
	}

	if token.Used {
		return nil, core.ValidationError("Token já utilizado")
	}

	return &ValidateTokenResponse{Valido: true, Message: "Token válido"}, nil
}

// TestEmail sends synchronously so the admin sees the real SMTP outcome.
func (s *Service) TestEmail(
	ctx context.Context,
	email string,
) *TestEmailResponse {
	if err := s.mailer.SendTest(ctx, email); err != nil {
		return &TestEmailResponse{
			Sucesso: false,
			Mensagem: fmt.Sprintf(
				"Falha ao enviar email de teste para %s", email,
			),
		}
	}

	return &TestEmailResponse{
		Sucesso: true,
		Mensagem: fmt.Sprintf(
			"Email de teste enviado com sucesso para %s", email,
		),
	}
}

func (s *Service) sendMailAsync(
	kind, email string,
	send func(ctx context.Context) error,
) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.logger.Error("send mail failed",
				"kind", kind,
				"email", email,
				"error", err,
			)
		}
	}()
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	token, err := s.jwt.CreateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		Token:   token,
		Usuario: userResponse(user),
	}, nil
}

func userResponse(user *UserInfo) UserResponse {
	resp := UserResponse{
		ID:    user.ID,
		Nome:  user.Name,
		Email: user.Email,
		Tipo:  user.Role,
	}

	if user.ProfileImageID != nil {
		resp.ImagemPerfil = &ProfileImageRef{
			ID: *user.ProfileImageID,
		}
		if user.ProfileImageURL != nil {
			resp.ImagemPerfil.URL = *user.ProfileImageURL
		}
	}

	return resp
}
