// Package api defines the JSON contract of the generation endpoint, shared by
// the HTTP client and the backend.
package api

// GeneratePath is the route that turns a keyword into a dialogue.
const GeneratePath = "/api/generate"

// HeaderRequestID carries the correlation ID of a submission.
const HeaderRequestID = "X-Request-ID"

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	UserInput string `json:"userInput"`
}

// GenerateResponse is the success body. Dialogue is a pointer so a client can
// tell a missing field from an empty dialogue.
type GenerateResponse struct {
	Dialogue *string `json:"dialogue"`
}

// ErrorResponse is the body of every non-2xx reply from the backend.
type ErrorResponse struct {
	Error string `json:"error"`
}
