package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/middleware"
)

type Handler struct {
	service       *Service
	validator     *validator.Validate
	maxUploadSize int64
}

func NewHandler(service *Service, maxUploadSize int64) *Handler {
	return &Handler{
		service:       service,
		validator:     core.NewValidator(),
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/usuarios", func(r chi.Router) {
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/", h.List)
			r.Get("/self", h.GetSelf)
			r.Post("/", h.UpdateSelf)
			r.Post("/alterar-senha", h.ChangePassword)
			r.Post("/imagem-perfil", h.UploadProfileImage)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Put("/{id}", h.AdminUpdate)
				r.Delete("/{id}", h.AdminDelete)
			})
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Role: r.URL.Query().Get("tipo"),
		Name: r.URL.Query().Get("nome"),
	}
	params.Page, _ = strconv.Atoi(r.URL.Query().Get("pagina"))
	params.PageSize, _ = strconv.Atoi(r.URL.Query().Get("limite"))
	params.Normalize()

	if params.Role != "" && !ValidRole(params.Role) {
		core.BadRequest(w, "tipo de usuário inválido")
		return
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToSummaryList(users), params.Page, params.PageSize, total)
}

func (h *Handler) GetSelf(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.Unauthorized(w, "")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	core.OK(w, ToDetail(user))
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	core.OK(w, ToDetail(user))
}

func (h *Handler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.Unauthorized(w, "")
		return
	}

	h.update(w, r, userID)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	h.update(w, r, id)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	core.OK(w, ToDetail(user))
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.Unauthorized(w, "")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	err := h.service.ChangePassword(
		r.Context(),
		userID,
		req.SenhaAtual,
		req.NovaSenha,
	)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.Unauthorized(w, "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		core.BadRequest(w, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "campo de arquivo 'file' ausente")
		return
	}
	defer file.Close()

	user, err := h.service.UploadProfileImage(
		r.Context(),
		userID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	core.OK(w, ToDetail(user))
}

func (h *Handler) writeUserError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "usuário")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return 0, false
	}
	return id, true
}
