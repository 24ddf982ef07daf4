package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type fakeUserRepo struct {
	users  map[int64]*User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*User{}}
}

func (f *fakeUserRepo) seed(name, email, password, role string) *User {
	hash, _ := core.HashPassword(password)
	f.nextID++
	user := &User{
		ID:           f.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(_ context.Context, user *User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return core.ErrDuplicateKey
		}
	}
	f.nextID++
	user.ID = f.nextID
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return core.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdatePassword(
	_ context.Context,
	userID int64,
	passwordHash string,
) error {
	user, ok := f.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) SetProfileImage(
	_ context.Context,
	userID, fileID int64,
) error {
	user, ok := f.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	user.ProfileImageID = &fileID
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(
	_ context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var users []User
	for _, user := range f.users {
		if params.Role != "" && user.Role != params.Role {
			continue
		}
		users = append(users, *user)
	}
	return users, len(users), nil
}

func (f *fakeUserRepo) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	for _, user := range f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeImages struct {
	saved   []string
	deleted []int64
	nextID  int64
}

func (f *fakeImages) SaveProfileImage(
	_ context.Context,
	_ int64,
	name, _ string,
	_ io.Reader,
) (int64, string, error) {
	f.nextID++
	f.saved = append(f.saved, name)
	return f.nextID, "/api/arquivos/download/perfil/x/" + name, nil
}

func (f *fakeImages) DeleteOwnFile(
	_ context.Context,
	fileID, _ int64,
) error {
	f.deleted = append(f.deleted, fileID)
	return nil
}

func newUserFixture() (*Service, *fakeUserRepo, *fakeImages) {
	repo := newFakeUserRepo()
	images := &fakeImages{}
	return NewService(repo, images, slog.New(slog.DiscardHandler)), repo, images
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	svc, _, _ := newUserFixture()

	_, err := svc.Create(
		context.Background(), "Ana", "ana@ifpr.edu.br", "hash", "diretor")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateLowercasesEmail(t *testing.T) {
	svc, repo, _ := newUserFixture()

	info, err := svc.Create(
		context.Background(), "Ana", "Ana@IFPR.edu.br", "hash", "aluno")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.users[info.ID].Email != "ana@ifpr.edu.br" {
		t.Fatalf("email not normalized: %q", repo.users[info.ID].Email)
	}
}

func TestUpdateUserEmailConflict(t *testing.T) {
	svc, repo, _ := newUserFixture()
	repo.seed("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")
	bruno := repo.seed("Bruno", "bruno@ifpr.edu.br", "senha!123", "aluno")

	taken := "ana@ifpr.edu.br"
	_, err := svc.UpdateUser(context.Background(), bruno.ID,
		UpdateRequest{Email: &taken})
	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Message != "Email já está em uso" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}

func TestUpdateUserKeepingOwnEmail(t *testing.T) {
	svc, repo, _ := newUserFixture()
	ana := repo.seed("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")

	// Re-submitting the current email is not a conflict.
	same := "ana@ifpr.edu.br"
	nome := "Ana Clara"
	updated, err := svc.UpdateUser(context.Background(), ana.ID,
		UpdateRequest{Nome: &nome, Email: &same})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Name != "Ana Clara" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
}

func TestDeleteUserBlocksAdmins(t *testing.T) {
	svc, repo, _ := newUserFixture()
	admin := repo.seed("Root", "root@ifpr.edu.br", "senha!123", "admin")
	aluno := repo.seed("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")

	err := svc.DeleteUser(context.Background(), admin.ID)
	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if !strings.Contains(appErr.Message, "administradores") {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
	if _, ok := repo.users[admin.ID]; !ok {
		t.Fatal("admin must not be deleted")
	}

	if err := svc.DeleteUser(context.Background(), aluno.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, ok := repo.users[aluno.ID]; ok {
		t.Fatal("user not deleted")
	}
}

func TestChangePassword(t *testing.T) {
	svc, repo, _ := newUserFixture()
	ana := repo.seed("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")
	oldHash := repo.users[ana.ID].PasswordHash

	err := svc.ChangePassword(
		context.Background(), ana.ID, "senha-errada!", "nova-senha!1")
	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Message != "Senha atual incorreta" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}

	err = svc.ChangePassword(
		context.Background(), ana.ID, "senha!123", "nova-senha!1")
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if repo.users[ana.ID].PasswordHash == oldHash {
		t.Fatal("password hash unchanged")
	}

	valid, err := core.VerifyPassword(
		"nova-senha!1", repo.users[ana.ID].PasswordHash)
	if err != nil || !valid {
		t.Fatalf("new password does not verify: %v", err)
	}
}

func TestUploadProfileImageReplacesOldImage(t *testing.T) {
	svc, repo, images := newUserFixture()
	ana := repo.seed("Ana", "ana@ifpr.edu.br", "senha!123", "aluno")
	oldID := int64(77)
	repo.users[ana.ID].ProfileImageID = &oldID

	updated, err := svc.UploadProfileImage(
		context.Background(), ana.ID, "avatar.png", "image/png",
		strings.NewReader("png"))
	if err != nil {
		t.Fatalf("UploadProfileImage: %v", err)
	}

	if len(images.deleted) != 1 || images.deleted[0] != 77 {
		t.Fatalf("old image not deleted: %v", images.deleted)
	}
	if updated.ProfileImageID == nil || *updated.ProfileImageID == 77 {
		t.Fatalf("reference not replaced: %v", updated.ProfileImageID)
	}
}

func TestResolveUser(t *testing.T) {
	svc, repo, _ := newUserFixture()
	ana := repo.seed("Ana", "ana@ifpr.edu.br", "senha!123", "professor")

	resolved, err := svc.ResolveUser(context.Background(), ana.ID)
	if err != nil {
		t.Fatalf("ResolveUser: %v", err)
	}
	if resolved.Role != "professor" || resolved.Name != "Ana" {
		t.Fatalf("unexpected identity %+v", resolved)
	}

	if _, err := svc.ResolveUser(context.Background(), 404); !errors.Is(
		err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
