package handler

import (
	"time"

	"github.com/yndnr/petyard-go/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// SignupRequest is the request body for POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries a fresh session token.
type LoginResponse struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenResponse reports the state of a session token.
type TokenResponse struct {
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UpdateUserRequest is the request body for PATCH /users/{user}.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=1,max=256"`
}

// CreatePetRequest is the request body for POST /users/{user}/pets/new.
type CreatePetRequest struct {
	Name    string `json:"name" validate:"required,max=64"`
	Species string `json:"species" validate:"required,max=32"`
	Image   uint64 `json:"image"`
	PetYard string `json:"pet_yard" validate:"omitempty,uuid"`
}

// UpdatePetRequest is the request body for PATCH /users/{user}/pets/{pet}.
// An empty PetYard takes the pet out of its yard.
type UpdatePetRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=64"`
	Species *string `json:"species" validate:"omitempty,min=1,max=32"`
	Image   *uint64 `json:"image"`
	PetYard *string `json:"pet_yard"`
}

// PetResponse is the owner's view of a pet with its derived state.
type PetResponse struct {
	*domain.Pet
	Hunger domain.Hunger `json:"hunger"`
	Mood   domain.Mood   `json:"mood"`
}

// CreateYardRequest is the request body for POST /users/{user}/pet_yards/new.
type CreateYardRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Image uint64 `json:"image"`
}

// UpdateYardRequest is the request body for PATCH /users/{user}/pet_yards/{yard}.
type UpdateYardRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=64"`
	Image *uint64 `json:"image"`
}

// SendMessageRequest is the request body for POST /users/{user}/messages/{peer}.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=4096"`
}

// MessageResponse is one direct message. Text is set only when the caller
// asked for decryption.
type MessageResponse struct {
	domain.DirectMessage
	Text *string `json:"text,omitempty"`
}

// DeleteResponse acknowledges a deletion.
type DeleteResponse struct {
	Deleted string `json:"deleted"`
}
