package api

import "github.com/samcharles93/parley/internal/transcript"

// CreateSessionRequest starts a chat session. Lang defaults to "en".
// PersonaIndex pins a specific test-split persona; when nil one is sampled.
type CreateSessionRequest struct {
	Lang         string `json:"lang,omitempty"`
	PersonaIndex *int   `json:"persona_index,omitempty"`
}

// SessionResponse describes a session and its transcript so far.
type SessionResponse struct {
	ID        string            `json:"id"`
	Lang      string            `json:"lang"`
	Persona   []string          `json:"persona"`
	CreatedAt int64             `json:"created_at"`
	Dialog    []transcript.Turn `json:"dialog"`
}

// MessageRequest is one user utterance.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse carries the model's reply.
type MessageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Turns     int    `json:"turns"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
