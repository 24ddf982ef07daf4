package file

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

type fakeFileRepo struct {
	files  map[int64]*File
	links  map[int64]int64 // file id -> project id
	nextID int64
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{
		files: map[int64]*File{},
		links: map[int64]int64{},
	}
}

func (f *fakeFileRepo) Create(_ context.Context, file *File) error {
	f.nextID++
	file.ID = f.nextID
	file.CreatedAt = time.Now()
	copied := *file
	f.files[file.ID] = &copied
	return nil
}

func (f *fakeFileRepo) GetByID(_ context.Context, id int64) (*File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileRepo) GetByPath(
	_ context.Context,
	path string,
) (*File, error) {
	for _, file := range f.files {
		if file.Path == path {
			copied := *file
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeFileRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.files[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.files, id)
	return nil
}

func (f *fakeFileRepo) LinkToProject(
	_ context.Context,
	fileID, projectID int64,
) error {
	f.links[fileID] = projectID
	return nil
}

type fakeStorage struct {
	saved     map[string]string
	removeErr error
	removed   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: map[string]string{}}
}

func (f *fakeStorage) Save(relPath string, content io.Reader) (int64, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return 0, err
	}
	f.saved[relPath] = string(data)
	return int64(len(data)), nil
}

func (f *fakeStorage) Remove(relPath string) error {
	f.removed = append(f.removed, relPath)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.saved, relPath)
	return nil
}

func (f *fakeStorage) Abs(relPath string) (string, error) {
	return "/uploads/" + relPath, nil
}

type fakeGuard struct {
	err error
}

func (f *fakeGuard) CanAttachFiles(
	_ context.Context,
	_, _ int64,
	_ bool,
) error {
	return f.err
}

func newFileService(
	repo Repository,
	storage Storage,
	guard ProjectGuard,
	ignoreUploads bool,
) *Service {
	return NewService(
		repo, storage, guard, ignoreUploads, slog.New(slog.DiscardHandler))
}

func TestUploadToProject(t *testing.T) {
	repo := newFakeFileRepo()
	storage := newFakeStorage()
	svc := newFileService(repo, storage, &fakeGuard{}, false)

	files, err := svc.UploadToProject(context.Background(), 5, 1, false,
		[]Upload{
			{Name: "tcc.pdf", Content: strings.NewReader("documento")},
			{Name: "anexo.docx", Content: strings.NewReader("anexo")},
		})
	if err != nil {
		t.Fatalf("UploadToProject: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	for _, file := range files {
		if !strings.HasPrefix(file.Path, "projetos/5/") {
			t.Fatalf("file stored outside project dir: %q", file.Path)
		}
		if repo.links[file.ID] != 5 {
			t.Fatalf("file %d not linked to project", file.ID)
		}
		if file.UploaderID != 1 {
			t.Fatalf("uploader not recorded: %d", file.UploaderID)
		}
		if file.URL == nil ||
			!strings.HasPrefix(*file.URL, "/api/arquivos/download/projetos/5/") {
			t.Fatalf("unexpected url %v", file.URL)
		}
	}
	if files[0].Size != int64(len("documento")) {
		t.Fatalf("unexpected size %d", files[0].Size)
	}
}

func TestUploadToProjectDeniedByGuard(t *testing.T) {
	guardErr := core.ForbiddenError("sem permissão")
	storage := newFakeStorage()
	svc := newFileService(
		newFakeFileRepo(), storage, &fakeGuard{err: guardErr}, false)

	_, err := svc.UploadToProject(context.Background(), 5, 2, false,
		[]Upload{{Name: "tcc.pdf", Content: strings.NewReader("x")}})
	if !errors.Is(err, guardErr) {
		t.Fatalf("expected guard error, got %v", err)
	}
	if len(storage.saved) != 0 {
		t.Fatal("nothing should be written when the guard denies")
	}
}

func TestUploadToProjectRejectsDenylistBeforeSaving(t *testing.T) {
	storage := newFakeStorage()
	svc := newFileService(newFakeFileRepo(), storage, &fakeGuard{}, false)

	_, err := svc.UploadToProject(context.Background(), 5, 1, false,
		[]Upload{
			{Name: "tcc.pdf", Content: strings.NewReader("ok")},
			{Name: "malware.exe", Content: strings.NewReader("mz")},
		})
	if err == nil {
		t.Fatal("expected rejection for .exe upload")
	}
	if !core.IsAppError(err) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if len(storage.saved) != 0 {
		t.Fatal("batch with a denylisted file must not be partially saved")
	}
}

func TestUploadPersistsContentType(t *testing.T) {
	repo := newFakeFileRepo()
	svc := newFileService(repo, newFakeStorage(), &fakeGuard{}, false)

	files, err := svc.UploadToProject(context.Background(), 5, 1, false,
		[]Upload{
			{
				Name:        "tcc.pdf",
				ContentType: "application/pdf",
				Content:     strings.NewReader("documento"),
			},
			// No declared type: the extension table fills it in.
			{Name: "anexo.docx", Content: strings.NewReader("anexo")},
		})
	if err != nil {
		t.Fatalf("UploadToProject: %v", err)
	}

	if files[0].ContentType != "application/pdf" {
		t.Fatalf("declared content type not kept: %q", files[0].ContentType)
	}
	if files[1].ContentType != ContentTypeFor("anexo.docx") {
		t.Fatalf("fallback content type not applied: %q", files[1].ContentType)
	}

	stored, err := repo.GetByID(context.Background(), files[0].ID)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if stored.ContentType != "application/pdf" {
		t.Fatalf("content type not persisted: %q", stored.ContentType)
	}
}

func TestSaveProfileImage(t *testing.T) {
	repo := newFakeFileRepo()
	storage := newFakeStorage()
	svc := newFileService(repo, storage, &fakeGuard{}, false)

	fileID, url, err := svc.SaveProfileImage(
		context.Background(), 3, "avatar.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("SaveProfileImage: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), fileID)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if !strings.HasPrefix(stored.Path, "perfil/3/") {
		t.Fatalf("profile image stored outside user dir: %q", stored.Path)
	}
	if !strings.Contains(url, "/perfil/3/") {
		t.Fatalf("unexpected url %q", url)
	}

	if _, _, err := svc.SaveProfileImage(
		context.Background(), 3, "script.sh", "", strings.NewReader("#!")); err == nil {
		t.Fatal("denylisted profile image must be rejected")
	}
}

func TestDeleteOwnFile(t *testing.T) {
	repo := newFakeFileRepo()
	storage := newFakeStorage()
	svc := newFileService(repo, storage, &fakeGuard{}, false)

	fileID, _, err := svc.SaveProfileImage(
		context.Background(), 3, "avatar.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("SaveProfileImage: %v", err)
	}

	// Only the uploader can delete.
	err = svc.DeleteOwnFile(context.Background(), fileID, 99)
	if !core.IsAppError(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), fileID); err != nil {
		t.Fatal("file must survive a denied delete")
	}

	if err := svc.DeleteOwnFile(context.Background(), fileID, 3); err != nil {
		t.Fatalf("DeleteOwnFile: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), fileID); err == nil {
		t.Fatal("metadata not removed")
	}
}

func TestDeleteOwnFileSurvivesDiskFailure(t *testing.T) {
	repo := newFakeFileRepo()
	storage := newFakeStorage()
	svc := newFileService(repo, storage, &fakeGuard{}, false)

	fileID, _, err := svc.SaveProfileImage(
		context.Background(), 3, "avatar.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("SaveProfileImage: %v", err)
	}

	storage.removeErr = errors.New("disk gone")
	if err := svc.DeleteOwnFile(context.Background(), fileID, 3); err != nil {
		t.Fatalf("metadata removal must proceed past disk errors: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), fileID); err == nil {
		t.Fatal("metadata not removed")
	}
}
