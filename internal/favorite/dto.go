package favorite

import (
	"time"

	"github.com/repotec-dev/repotec-api/internal/project"
)

type FavoriteResponse struct {
	ID          int64                  `json:"id"`
	DataCriacao time.Time              `json:"dataCriacao"`
	Projeto     project.ProjectSummary `json:"projeto"`
}
