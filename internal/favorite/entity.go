package favorite

import (
	"time"
)

type Favorite struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ProjectID int64     `db:"project_id"`
	CreatedAt time.Time `db:"created_at"`
}
