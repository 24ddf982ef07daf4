package auth

type RegisterRequest struct {
	Nome  string `json:"nome"  validate:"required,min=1,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Senha string `json:"senha" validate:"required,min=6,max=128,password"`
	Tipo  string `json:"tipo"  validate:"omitempty,oneof=aluno professor admin"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Senha string `json:"senha" validate:"required,min=6,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=128,password"`
	Token    string `json:"token"    validate:"required"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type TestEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ProfileImageRef struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type UserResponse struct {
	ID           int64            `json:"id"`
	Nome         string           `json:"nome"`
	Email        string           `json:"email"`
	Tipo         string           `json:"tipo"`
	ImagemPerfil *ProfileImageRef `json:"imagemPerfil,omitempty"`
}

type AuthResponse struct {
	Token   string       `json:"token"`
	Usuario UserResponse `json:"usuario"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ValidateTokenResponse struct {
	Valido  bool   `json:"valido"`
	Message string `json:"message"`
}

type TestEmailResponse struct {
	Sucesso  bool   `json:"sucesso"`
	Mensagem string `json:"mensagem"`
}
