package file

import (
	"time"
)

type FileResponse struct {
	ID          int64     `json:"id"`
	Nome        string    `json:"nome"`
	Caminho     string    `json:"caminho"`
	URL         *string   `json:"url,omitempty"`
	Tamanho     int64     `json:"tamanho"`
	ContentType string    `json:"contentType"`
	DataCriacao time.Time `json:"dataCriacao"`
}

func toResponse(f *File) FileResponse {
	return FileResponse{
		ID:          f.ID,
		Nome:        f.Name,
		Caminho:     f.Path,
		URL:         f.URL,
		Tamanho:     f.Size,
		ContentType: f.ContentType,
		DataCriacao: f.CreatedAt,
	}
}

func toResponseList(files []File) []FileResponse {
	responses := make([]FileResponse, len(files))
	for i := range files {
		responses[i] = toResponse(&files[i])
	}
	return responses
}
