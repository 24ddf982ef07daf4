package project

import (
	"time"
)

const (
	TipoTCC    = "TCC"
	TipoArtigo = "Artigo Científico"
	TipoOutros = "Outros"
)

func ValidTipo(tipo string) bool {
	return tipo == TipoTCC || tipo == TipoArtigo || tipo == TipoOutros
}

type Project struct {
	ID             int64     `db:"id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	AuthorID       int64     `db:"author_id"`
	AdvisorName    *string   `db:"advisor_name"`
	FileAuthorName *string   `db:"file_author_name"`
	Semester       *string   `db:"semester"`
	Category       string    `db:"category"`
	Reputation     float64   `db:"reputation"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	// Populated via JOIN on users.
	AuthorName string `db:"author_name"`
}

// CanMutate is the owner-or-admin rule shared by update and delete.
func (p *Project) CanMutate(actorID int64, isAdmin bool) bool {
	return p.AuthorID == actorID || isAdmin
}
