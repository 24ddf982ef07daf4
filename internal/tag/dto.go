package tag

type CreateTagRequest struct {
	Nome string `json:"nome" validate:"required,min=1,max=50"`
}

type TagResponse struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

func ToResponse(t *Tag) TagResponse {
	return TagResponse{ID: t.ID, Nome: t.Name}
}

func ToResponseList(tags []Tag) []TagResponse {
	responses := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		responses = append(responses, ToResponse(&t))
	}
	return responses
}
