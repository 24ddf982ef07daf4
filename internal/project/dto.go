package project

import (
	"time"
)

type CreateProjectRequest struct {
	Titulo              string   `json:"titulo"              validate:"required,min=1,max=255"`
	Descricao           string   `json:"descricao"           validate:"required,min=1"`
	Tags                []string `json:"tags"                validate:"required,dive,min=1,max=50"`
	Semestre            *string  `json:"semestre"            validate:"omitempty,semester"`
	TipoProjeto         string   `json:"tipoProjeto"         validate:"required,oneof=TCC 'Artigo Científico' Outros"`
	ProfessorOrientador *string  `json:"professorOrientador" validate:"omitempty,max=255"`
	AutorArquivos       *string  `json:"autorArquivos"       validate:"omitempty,max=255"`
}

type UpdateProjectRequest struct {
	Titulo              *string  `json:"titulo"              validate:"omitempty,min=1,max=255"`
	Descricao           *string  `json:"descricao"           validate:"omitempty,min=1"`
	Tags                []string `json:"tags"                validate:"omitempty,dive,min=1,max=50"`
	Semestre            *string  `json:"semestre"            validate:"omitempty,semester"`
	TipoProjeto         *string  `json:"tipoProjeto"         validate:"omitempty,oneof=TCC 'Artigo Científico' Outros"`
	ProfessorOrientador *string  `json:"professorOrientador" validate:"omitempty,max=255"`
	AutorArquivos       *string  `json:"autorArquivos"       validate:"omitempty,max=255"`
}

type SearchParams struct {
	Termo    string
	Tags     []string
	Tipo     string
	AutorID  int64
	Semestre string
	Page     int
	PageSize int
}

func (p *SearchParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 12
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *SearchParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type UserRef struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

type TagRef struct {
	ID   int64  `db:"id"   json:"id"`
	Nome string `db:"name" json:"nome"`
}

type FileRef struct {
	ID          int64   `db:"id"           json:"id"`
	Nome        string  `db:"name"         json:"nome"`
	Caminho     string  `db:"path"         json:"caminho"`
	URL         *string `db:"url"          json:"url,omitempty"`
	Tamanho     int64   `db:"size"         json:"tamanho"`
	ContentType string  `db:"content_type" json:"contentType"`
}

type RatingRef struct {
	ID          int64     `db:"id"          json:"id"`
	Nota        int       `db:"score"       json:"nota"`
	Comentario  *string   `db:"comment"     json:"comentario,omitempty"`
	DataCriacao time.Time `db:"created_at"  json:"dataCriacao"`
	AuthorID    int64     `db:"author_id"   json:"-"`
	AuthorName  string    `db:"author_name" json:"-"`

	Autor UserRef `json:"autor"`
}

type ProjectSummary struct {
	ID              int64     `json:"id"`
	Titulo          string    `json:"titulo"`
	Descricao       string    `json:"descricao"`
	Reputacao       float64   `json:"reputacao"`
	TipoProjeto     string    `json:"tipoProjeto"`
	DataAtualizacao time.Time `json:"dataAtualizacao"`
	Autor           UserRef   `json:"autor"`
	Tags            []TagRef  `json:"tags"`
	Arquivos        []FileRef `json:"arquivos"`
}

type ProjectDetail struct {
	ProjectSummary
	Semestre            *string     `json:"semestre,omitempty"`
	ProfessorOrientador *string     `json:"professorOrientador,omitempty"`
	AutorArquivos       *string     `json:"autorArquivos,omitempty"`
	DataCriacao         time.Time   `json:"dataCriacao"`
	Avaliacoes          []RatingRef `json:"avaliacoes"`
}

func toSummary(p *Project, tags []TagRef, files []FileRef) ProjectSummary {
	if tags == nil {
		tags = []TagRef{}
	}
	if files == nil {
		files = []FileRef{}
	}

	return ProjectSummary{
		ID:              p.ID,
		Titulo:          p.Title,
		Descricao:       p.Description,
		Reputacao:       p.Reputation,
		TipoProjeto:     p.Category,
		DataAtualizacao: p.UpdatedAt,
		Autor:           UserRef{ID: p.AuthorID, Nome: p.AuthorName},
		Tags:            tags,
		Arquivos:        files,
	}
}

func toDetail(
	p *Project,
	tags []TagRef,
	files []FileRef,
	ratings []RatingRef,
) ProjectDetail {
	if ratings == nil {
		ratings = []RatingRef{}
	}

	for i := range ratings {
		ratings[i].Autor = UserRef{
			ID:   ratings[i].AuthorID,
			Nome: ratings[i].AuthorName,
		}
	}

	return ProjectDetail{
		ProjectSummary:      toSummary(p, tags, files),
		Semestre:            p.Semester,
		ProfessorOrientador: p.AdvisorName,
		AutorArquivos:       p.FileAuthorName,
		DataCriacao:         p.CreatedAt,
		Avaliacoes:          ratings,
	}
}
