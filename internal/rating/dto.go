package rating

import (
	"time"
)

type RateProjectRequest struct {
	Nota       int     `json:"nota"       validate:"required,min=1,max=5"`
	Comentario *string `json:"comentario" validate:"omitempty,max=2000"`
}

type UpdateRatingRequest struct {
	Nota       *int    `json:"nota"       validate:"omitempty,min=1,max=5"`
	Comentario *string `json:"comentario" validate:"omitempty,max=2000"`
}

type RatingResponse struct {
	ID              int64     `json:"id"`
	Nota            int       `json:"nota"`
	Comentario      *string   `json:"comentario,omitempty"`
	ProjetoID       int64     `json:"projetoId"`
	UsuarioID       int64     `json:"usuarioId"`
	DataCriacao     time.Time `json:"dataCriacao"`
	DataAtualizacao time.Time `json:"dataAtualizacao"`
}

func toResponse(r *Rating) RatingResponse {
	return RatingResponse{
		ID:              r.ID,
		Nota:            r.Score,
		Comentario:      r.Comment,
		ProjetoID:       r.ProjectID,
		UsuarioID:       r.UserID,
		DataCriacao:     r.CreatedAt,
		DataAtualizacao: r.UpdatedAt,
	}
}
