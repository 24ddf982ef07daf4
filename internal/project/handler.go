package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/projetos", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Get("/semestres", h.ListSemesters)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	detail, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.Created(w, detail)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r)
	params.Normalize()

	summaries, total, err := h.service.Search(r.Context(), params)
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.Paginated(w, summaries, params.Page, params.PageSize, total)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.OK(w, detail)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	detail, err := h.service.Update(r.Context(),
		id, middleware.GetUserID(r.Context()), middleware.IsAdmin(r.Context()), req)
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.OK(w, detail)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := h.service.Delete(r.Context(),
		id, middleware.GetUserID(r.Context()), middleware.IsAdmin(r.Context()))
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListSemesters(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("pagina"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limite"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	semesters, total, err := h.service.ListSemesters(r.Context(), page, pageSize)
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.Paginated(w, semesters, page, pageSize, total)
}

func parseSearchParams(r *http.Request) SearchParams {
	q := r.URL.Query()

	params := SearchParams{
		Termo:    strings.TrimSpace(q.Get("termo")),
		Tipo:     strings.TrimSpace(q.Get("tipoProjeto")),
		Semestre: strings.TrimSpace(q.Get("semestre")),
	}

	if raw := q.Get("tags"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				params.Tags = append(params.Tags, name)
			}
		}
	}

	if autorID, err := strconv.ParseInt(q.Get("autorId"), 10, 64); err == nil {
		params.AutorID = autorID
	}

	params.Page, _ = strconv.Atoi(q.Get("pagina"))
	params.PageSize, _ = strconv.Atoi(q.Get("limite"))

	return params
}

func (h *Handler) writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "projeto")
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
