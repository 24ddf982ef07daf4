package emaildomain

type AddDomainRequest struct {
	Dominio string `json:"dominio" validate:"required,fqdn,max=255"`
}

type DomainResponse struct {
	ID      int64  `json:"id"`
	Dominio string `json:"dominio"`
	Ativo   bool   `json:"ativo"`
}

func toResponse(d *EmailDomain) DomainResponse {
	return DomainResponse{
		ID:      d.ID,
		Dominio: d.Domain,
		Ativo:   d.Active,
	}
}

func toResponseList(domains []EmailDomain) []DomainResponse {
	responses := make([]DomainResponse, 0, len(domains))
	for _, d := range domains {
		responses = append(responses, toResponse(&d))
	}
	return responses
}
