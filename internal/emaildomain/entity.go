package emaildomain

import (
	"time"
)

type EmailDomain struct {
	ID        int64     `db:"id"`
	Domain    string    `db:"domain"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}
