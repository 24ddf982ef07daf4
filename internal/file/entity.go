package file

import (
	"time"
)

type File struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Path        string    `db:"path"`
	URL         *string   `db:"url"`
	Size        int64     `db:"size"`
	ContentType string    `db:"content_type"`
	UploaderID  int64     `db:"uploader_id"`
	CreatedAt   time.Time `db:"created_at"`
}
