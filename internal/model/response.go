package model

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	Admin AdminProfile `json:"admin"`
}

// MessageResponse is the envelope for every non-success response of the auth
// API. The message is human readable and shown inline next to the form.
type MessageResponse struct {
	Message string `json:"message"`
}
