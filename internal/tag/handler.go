package tag

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/repotec-dev/repotec-api/internal/core"
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
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/buscar", h.Search)
		r.Get("/nome/{nome}", h.GetByName)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToResponseList(tags))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("termo")
	page, _ := strconv.Atoi(r.URL.Query().Get("pagina"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limite"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	tags, total, err := h.service.Search(r.Context(), term, page, pageSize)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(tags), page, pageSize, total)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	tag, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeTagError(w, err)
		return
	}

	core.OK(w, ToResponse(tag))
}

func (h *Handler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "nome")
	if name == "" {
		core.BadRequest(w, "nome obrigatório")
		return
	}

	tag, err := h.service.GetByName(r.Context(), name)
	if err != nil {
		h.writeTagError(w, err)
		return
	}

	core.OK(w, ToResponse(tag))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	tag, err := h.service.Create(r.Context(), req.Nome)
	if err != nil {
		h.writeTagError(w, err)
		return
	}

	core.Created(w, ToResponse(tag))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	tag, err := h.service.Update(r.Context(), id, req.Nome)
	if err != nil {
		h.writeTagError(w, err)
		return
	}

	core.OK(w, ToResponse(tag))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeTagError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeTagError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "tag")
	default:
		core.InternalServerError(w, err)
	}
}
