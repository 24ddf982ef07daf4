package faq

import (
	"time"
)

type CreateFAQRequest struct {
	Pergunta string `json:"pergunta" validate:"required,min=1"`
	Resposta string `json:"resposta" validate:"required,min=1"`
}

type UpdateFAQRequest struct {
	Pergunta *string `json:"pergunta" validate:"omitempty,min=1"`
	Resposta *string `json:"resposta" validate:"omitempty,min=1"`
}

type FAQResponse struct {
	ID          int64     `json:"id"`
	Pergunta    string    `json:"pergunta"`
	Resposta    string    `json:"resposta"`
	DataCriacao time.Time `json:"dataCriacao"`
}

func toResponse(f *FAQ) FAQResponse {
	return FAQResponse{
		ID:          f.ID,
		Pergunta:    f.Question,
		Resposta:    f.Answer,
		DataCriacao: f.CreatedAt,
	}
}

func toResponseList(faqs []FAQ) []FAQResponse {
	responses := make([]FAQResponse, 0, len(faqs))
	for _, f := range faqs {
		responses = append(responses, toResponse(&f))
	}
	return responses
}
