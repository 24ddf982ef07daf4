package user

import (
	"time"
)

// UpdateRequest covers both the self-service update (POST /usuarios) and
// the admin update (PUT /usuarios/:id); both expose the same partial-patch
// shape.
type UpdateRequest struct {
	Nome  *string `json:"nome"  validate:"omitempty,min=1,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Senha *string `json:"senha" validate:"omitempty,min=6,max=128,password"`
}

type ChangePasswordRequest struct {
	SenhaAtual string `json:"senhaAtual" validate:"required"`
	NovaSenha  string `json:"novaSenha"  validate:"required,min=6,max=128,password"`
}

type ListUsersParams struct {
	Role     string
	Name     string
	Page     int
	PageSize int
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ProfileImageRef struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type UserSummary struct {
	ID          int64     `json:"id"`
	Nome        string    `json:"nome"`
	Email       string    `json:"email"`
	Tipo        string    `json:"tipo"`
	DataCriacao time.Time `json:"dataCriacao"`
}

type UserDetail struct {
	ID           int64            `json:"id"`
	Nome         string           `json:"nome"`
	Email        string           `json:"email"`
	Tipo         string           `json:"tipo"`
	DataCriacao  time.Time        `json:"dataCriacao"`
	ImagemPerfil *ProfileImageRef `json:"imagemPerfil,omitempty"`
}

func ToSummary(u *User) UserSummary {
	return UserSummary{
		ID:          u.ID,
		Nome:        u.Name,
		Email:       u.Email,
		Tipo:        u.Role,
		DataCriacao: u.CreatedAt,
	}
}

func ToSummaryList(users []User) []UserSummary {
	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, ToSummary(&u))
	}
	return summaries
}

func ToDetail(u *User) UserDetail {
	detail := UserDetail{
		ID:          u.ID,
		Nome:        u.Name,
		Email:       u.Email,
		Tipo:        u.Role,
		DataCriacao: u.CreatedAt,
	}

	if u.ProfileImageID != nil {
		detail.ImagemPerfil = &ProfileImageRef{ID: *u.ProfileImageID}
		if u.ProfileImageURL != nil {
			detail.ImagemPerfil.URL = *u.ProfileImageURL
		}
	}

	return detail
}
