package favorite

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/favoritos", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/{projetoId}", h.Add)
		r.Delete("/{projetoId}", h.Remove)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.service.List(
		r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeFavoriteError(w, err)
		return
	}

	core.OK(w, favorites)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	favorite, err := h.service.Add(
		r.Context(), middleware.GetUserID(r.Context()), projectID)
	if err != nil {
		h.writeFavoriteError(w, err)
		return
	}

	core.Created(w, map[string]any{
		"id":          favorite.ID,
		"projetoId":   favorite.ProjectID,
		"dataCriacao": favorite.CreatedAt,
	})
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	err := h.service.Remove(
		r.Context(), middleware.GetUserID(r.Context()), projectID)
	if err != nil {
		h.writeFavoriteError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeFavoriteError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "favorito")
	default:
		core.InternalServerError(w, err)
	}
}

func parseProjectID(
	w http.ResponseWriter,
	r *http.Request,
) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "projetoId"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "id inválido")
		return 0, false
	}
	return id, true
}
