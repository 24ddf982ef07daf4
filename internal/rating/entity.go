package rating

import (
	"time"
)

type Rating struct {
	ID        int64     `db:"id"`
	ProjectID int64     `db:"project_id"`
	UserID    int64     `db:"user_id"`
	Score     int       `db:"score"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
