package file

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/middleware"
)

type Handler struct {
	service       *Service
	maxUploadSize int64
}

func NewHandler(service *Service, maxUploadSize int64) *Handler {
	return &Handler{
		service:       service,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/arquivos", func(r chi.Router) {
		// Profile pictures render in <img> tags, so they stay public.
		r.Get("/perfil/{usuarioId}/{filename}", h.ProfileImage)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/upload/{projetoId}", h.UploadToProject)
			r.Get("/download/*", h.DownloadByPath)
			r.Get("/{id}/download", h.DownloadByID)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) UploadToProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projetoId"), 10, 64)
	if err != nil || projectID <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		core.BadRequest(w, "invalid multipart body")
		return
	}

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		core.BadRequest(w, "campo de arquivo 'files' ausente")
		return
	}

	uploads := make([]Upload, 0, len(parts))
	for _, part := range parts {
		src, err := part.Open()
		if err != nil {
			core.BadRequest(w, "invalid multipart body")
			return
		}
		defer src.Close()

		uploads = append(uploads, Upload{
			Name:        part.Filename,
			ContentType: part.Header.Get("Content-Type"),
			Content:     src,
		})
	}

	files, err := h.service.UploadToProject(r.Context(),
		projectID, middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()), uploads)
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	core.Created(w, toResponseList(files))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	err = h.service.DeleteOwnFile(r.Context(),
		id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) DownloadByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	file, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	h.serve(w, r, file, true)
}

func (h *Handler) DownloadByPath(w http.ResponseWriter, r *http.Request) {
	relPath := chi.URLParam(r, "*")
	if relPath == "" {
		core.BadRequest(w, "caminho inválido")
		return
	}

	file, err := h.service.GetByPath(r.Context(), relPath)
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	h.serve(w, r, file, true)
}

// ProfileImage serves a profile picture inline so browsers can render it.
func (h *Handler) ProfileImage(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "usuarioId"), 10, 64)
	if err != nil || userID <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	relPath := path.Join(
		"perfil",
		strconv.FormatInt(userID, 10),
		chi.URLParam(r, "filename"),
	)

	file, err := h.service.GetByPath(r.Context(), relPath)
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	h.serve(w, r, file, false)
}

func (h *Handler) serve(
	w http.ResponseWriter,
	r *http.Request,
	file *File,
	attachment bool,
) {
	abs, err := h.service.AbsolutePath(file)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(file.Name)
	}
	w.Header().Set("Content-Type", contentType)
	if attachment {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", file.Name))
	}

	http.ServeFile(w, r, abs)
}

func (h *Handler) writeFileError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "arquivo")
	default:
		core.InternalServerError(w, err)
	}
}
