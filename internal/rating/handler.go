package rating

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
	r.Route("/avaliacoes", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/projeto/{projetoId}", h.Rate)
		r.Get("/projeto/{projetoId}", h.GetOwn)
		r.Put("/{id}", h.Update)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseParam(w, r, "projetoId")
	if !ok {
		return
	}

	var req RateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	rating, err := h.service.Rate(r.Context(),
		projectID, middleware.GetUserID(r.Context()), req)
	if err != nil {
		h.writeRatingError(w, err)
		return
	}

	core.Created(w, toResponse(rating))
}

func (h *Handler) GetOwn(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseParam(w, r, "projetoId")
	if !ok {
		return
	}

	rating, err := h.service.GetOwn(r.Context(),
		projectID, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeRatingError(w, err)
		return
	}

	core.OK(w, toResponse(rating))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	rating, err := h.service.Update(r.Context(),
		id, middleware.GetUserID(r.Context()), req)
	if err != nil {
		h.writeRatingError(w, err)
		return
	}

	core.OK(w, toResponse(rating))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeRatingError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeRatingError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "avaliação")
	default:
		core.InternalServerError(w, err)
	}
}

func parseParam(
	w http.ResponseWriter,
	r *http.Request,
	name string,
) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return 0, false
	}
	return id, true
}
