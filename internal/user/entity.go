package user

import (
	"time"
)

const (
	RoleAluno     = "aluno"
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
)

func ValidRole(role string) bool {
	return role == RoleAluno || role == RoleProfessor || role == RoleAdmin
}

type User struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	Role           string    `db:"role"`
	ProfileImageID *int64    `db:"profile_image_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	// Populated via LEFT JOIN on the files table.
	ProfileImageURL *string `db:"profile_image_url"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
