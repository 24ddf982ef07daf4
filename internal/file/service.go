package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/project"
	"github.com/repotec-dev/repotec-api/internal/user"
)

// ProjectGuard authorizes uploads into a project. Satisfied by
// project.Service.
type ProjectGuard interface {
	CanAttachFiles(
		ctx context.Context,
		projectID, actorID int64,
		isAdmin bool,
	) error
}

// Upload is one incoming multipart part. ContentType is the part's declared
// Content-Type header; when absent the extension table fills it in.
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

type Service struct {
	repo          Repository
	storage       Storage
	projects      ProjectGuard
	ignoreUploads bool
	logger        *slog.Logger
}

func NewService(
	repo Repository,
	storage Storage,
	projects ProjectGuard,
	ignoreUploads bool,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:          repo,
		storage:       storage,
		projects:      projects,
		ignoreUploads: ignoreUploads,
		logger:        logger,
	}
}

// UploadToProject stores the uploads under the project's directory and links
// them to the project. Only the project owner or an admin may attach files.
func (s *Service) UploadToProject(
	ctx context.Context,
	projectID, actorID int64,
	isAdmin bool,
	uploads []Upload,
) ([]File, error) {
	if err := s.projects.CanAttachFiles(
		ctx, projectID, actorID, isAdmin); err != nil {
		return nil, err
	}

	for _, upload := range uploads {
		if !ExtensionAllowed(upload.Name, s.ignoreUploads) {
			return nil, core.ValidationError(fmt.Sprintf(
				"Tipo de arquivo não permitido: %s", upload.Name))
		}
	}

	files := make([]File, 0, len(uploads))
	for _, upload := range uploads {
		saved, err := s.save(ctx,
			path.Join("projetos", fmt.Sprintf("%d", projectID)),
			upload.Name, upload.ContentType, actorID, upload.Content)
		if err != nil {
			return nil, err
		}

		if err := s.repo.LinkToProject(ctx, saved.ID, projectID); err != nil {
			return nil, err
		}

		files = append(files, *saved)
	}

	return files, nil
}

// SaveProfileImage stores a user's profile picture under their own
// directory. The caller is responsible for updating the user's reference.
func (s *Service) SaveProfileImage(
	ctx context.Context,
	userID int64,
	name, contentType string,
	content io.Reader,
) (int64, string, error) {
	if !ExtensionAllowed(name, s.ignoreUploads) {
		return 0, "", core.ValidationError(fmt.Sprintf(
			"Tipo de arquivo não permitido: %s", name))
	}

	saved, err := s.save(ctx,
		path.Join("perfil", fmt.Sprintf("%d", userID)),
		name, contentType, userID, content)
	if err != nil {
		return 0, "", err
	}

	url := ""
	if saved.URL != nil {
		url = *saved.URL
	}

	return saved.ID, url, nil
}

// DeleteOwnFile removes a file's metadata and, best-effort, its bytes on
// disk. Only the uploader may delete a file.
func (s *Service) DeleteOwnFile(
	ctx context.Context,
	fileID, actorID int64,
) error {
	file, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if file.UploaderID != actorID {
		return core.ForbiddenError(
			"Você só pode excluir arquivos que você enviou")
	}

	if err := s.storage.Remove(file.Path); err != nil {
		s.logger.Warn("failed to remove file from disk",
			slog.Int64("file_id", file.ID),
			slog.String("path", file.Path),
			slog.String("error", err.Error()),
		)
	}

	return s.repo.Delete(ctx, file.ID)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPath(
	ctx context.Context,
	relPath string,
) (*File, error) {
	return s.repo.GetByPath(ctx, relPath)
}

// AbsolutePath resolves a stored file's location on disk for serving.
func (s *Service) AbsolutePath(file *File) (string, error) {
	return s.storage.Abs(file.Path)
}

var (
	_ user.ProfileImageStore = (*Service)(nil)
	_ ProjectGuard           = (*project.Service)(nil)
)

func (s *Service) save(
	ctx context.Context,
	dir, name, contentType string,
	uploaderID int64,
	content io.Reader,
) (*File, error) {
	relPath := path.Join(dir, StoredName(name))

	written, err := s.storage.Save(relPath, content)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = ContentTypeFor(name)
	}

	url := "/api/arquivos/download/" + relPath
	file := &File{
		Name:        name,
		Path:        relPath,
		URL:         &url,
		Size:        written,
		ContentType: contentType,
		UploaderID:  uploaderID,
	}

	if err := s.repo.Create(ctx, file); err != nil {
		if rmErr := s.storage.Remove(relPath); rmErr != nil {
			s.logger.Warn("failed to clean up orphaned upload",
				slog.String("path", relPath),
				slog.String("error", rmErr.Error()),
			)
		}
		return nil, err
	}

	return file, nil
}
