package types

import "errors"

var (
	ErrNotFound     = errors.New("requested item not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidProfile is returned when a traveler profile breaks a selection cap
	// or carries an unknown tag. Profiles are rejected, never truncated.
	ErrInvalidProfile = errors.New("invalid traveler profile")

	// ErrMalformedDestination marks a destination record that failed validation on read.
	ErrMalformedDestination = errors.New("malformed destination record")
	ErrDimensionMismatch    = errors.New("embedding dimension mismatch")

	// ErrRetrieval covers an unreachable vector store or a failed embedding call.
	ErrRetrieval  = errors.New("destination retrieval failed")
	ErrGeneration = errors.New("text generation failed")
)

// Response is the generic envelope for simple acknowledgements.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
