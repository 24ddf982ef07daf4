package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/repotec-dev/repotec-api/internal/auth"
	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/middleware"
)

// ProfileImageStore is implemented by the file service. Uploads land under
// the per-user profile directory and skip project ownership checks.
type ProfileImageStore interface {
	SaveProfileImage(
		ctx context.Context,
		userID int64,
		name, contentType string,
		content io.Reader,
	) (fileID int64, url string, err error)
	DeleteOwnFile(ctx context.Context, fileID, actorID int64) error
}

type Service struct {
	repo   Repository
	images ProfileImageStore
	logger *slog.Logger
}

func NewService(
	repo Repository,
	images ProfileImageStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		images: images,
		logger: logger,
	}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	name, email, passwordHash, role string,
) (*auth.UserInfo, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"create user: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user := &User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// ResolveUser loads the request identity from the database so role changes
// and deletions invalidate outstanding tokens immediately.
func (s *Service) ResolveUser(
	ctx context.Context,
	id int64,
) (*middleware.AuthUser, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &middleware.AuthUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateUser applies a partial patch; the same semantics back the
// self-service and the admin endpoint.
func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	req UpdateRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		if email != user.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, core.ConflictError("Email já está em uso")
			}
			user.Email = email
		}
	}

	if req.Nome != nil {
		user.Name = *req.Nome
	}

	if req.Senha != nil {
		hash, err := core.HashPassword(*req.Senha)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("Email já está em uso")
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		return core.ForbiddenError(
			"Não é permitido excluir usuários administradores",
		)
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID int64,
	senhaAtual, novaSenha string,
) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		senhaAtual,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return core.UnauthorizedError("Senha atual incorreta")
	}

	newHash, err := core.HashPassword(novaSenha)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, newHash)
}

// UploadProfileImage replaces the user's profile image. The previous image
// is deleted best-effort before the new reference is stored.
func (s *Service) UploadProfileImage(
	ctx context.Context,
	userID int64,
	name, contentType string,
	content io.Reader,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.ProfileImageID != nil {
		if err := s.images.DeleteOwnFile(ctx, *user.ProfileImageID, userID); err != nil {
			s.logger.Warn("delete old profile image failed",
				"user_id", userID,
				"file_id", *user.ProfileImageID,
				"error", err,
			)
		}
	}

	fileID, _, err := s.images.SaveProfileImage(
		ctx, userID, name, contentType, content)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetProfileImage(ctx, userID, fileID); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, userID)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Role:            u.Role,
		ProfileImageID:  u.ProfileImageID,
		ProfileImageURL: u.ProfileImageURL,
	}
}

var (
	_ auth.UserProvider       = (*Service)(nil)
	_ middleware.UserResolver = (*Service)(nil)
)
