package auth

type loginInput struct {
	Body LoginRequest
}

type LoginRequest struct {
	Password string `json:"password" minLength:"1" doc:"Shared device login password"`
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token string `json:"token"`
}

type logoutInput struct{}

type logoutOutput struct {
	Body LogoutResponse
}

type LogoutResponse struct {
	Status string `json:"status"`
}
