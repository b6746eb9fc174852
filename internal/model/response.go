package model

// Response is the envelope every endpoint answers with. Error responses
// carry only Message and Success=false.
type Response struct {
	Message string      `json:"message,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// OTPAck acknowledges that a one-time code was mailed.
type OTPAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

// TokenPair is the access/refresh token couple minted after verification.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
