package emaildomain

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
	r.Route("/dominios-email", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)

		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Put("/{id}/ativar", h.Activate)
		r.Put("/{id}/desativar", h.Deactivate)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toResponseList(domains))
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "Domínio inválido")
		return
	}

	domain, err := h.service.Add(r.Context(), req.Dominio)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("dominio"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, toResponse(domain))
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(
	w http.ResponseWriter,
	r *http.Request,
	active bool,
) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return
	}

	var domain *EmailDomain
	if active {
		domain, err = h.service.Activate(r.Context(), id)
	} else {
		domain, err = h.service.Deactivate(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "domínio")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toResponse(domain))
}
