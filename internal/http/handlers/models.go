package handlers

// Входные/выходные модели REST.

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

type recoveryRequest struct {
	Email string `json:"email"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

type signupResponse struct {
	Msg    string `json:"msg"`
	UserID string `json:"user_id"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // Unix UTC
}

type userInfoResponse struct {
	User string `json:"user"`
}
