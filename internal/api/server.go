// Package api serves chat sessions over HTTP: create a session with a
// persona, exchange messages with the model, fetch or delete the transcript.
package api

import (
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/parley/internal/dataset"
	"github.com/samcharles93/parley/internal/dialogue"
	"github.com/samcharles93/parley/internal/inference"
	"github.com/samcharles93/parley/internal/tokenizer"
	"github.com/samcharles93/parley/internal/transcript"
)

// Server wires the decoding engine and persona corpus into HTTP handlers.
type Server struct {
	Engine   inference.Engine
	Tok      *tokenizer.Tokenizer
	Specials *tokenizer.Specials
	Corpus   *dataset.Corpus
	Store    *SessionStore
	Rng      *rand.Rand
	MaxTurns int

	// The generator and its sampler keep per-call scratch state, so
	// generation is serialized.
	genMu sync.Mutex
	rngMu sync.Mutex
}

// Register mounts the session routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/sessions", s.createSession)
	e.GET("/v1/sessions/:id", s.getSession)
	e.DELETE("/v1/sessions/:id", s.deleteSession)
	e.POST("/v1/sessions/:id/messages", s.postMessage)
}

func (s *Server) createSession(c *echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	code := req.Lang
	if code == "" {
		code = "en"
	}
	tag, ok := dataset.Tag(code)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "unsupported language: choose one of " + strings.Join(dataset.Languages(), ", "),
		})
	}
	langID, ok := s.Specials.LangID(tag)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "language has no tag token"})
	}

	personas, err := s.Corpus.Personas(tag)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var persona [][]int
	if req.PersonaIndex != nil {
		i := *req.PersonaIndex
		if i < 0 || i >= len(personas) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "persona_index out of range"})
		}
		persona = personas[i]
	} else {
		s.rngMu.Lock()
		persona = personas[s.Rng.Intn(len(personas))]
		s.rngMu.Unlock()
	}

	sess := s.Store.Create(tag, langID, persona, s.MaxTurns)
	return c.JSON(http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) getSession(c *echo.Context) error {
	sess, ok := s.Store.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	}
	return c.JSON(http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) deleteSession(c *echo.Context) error {
	if !s.Store.Delete(c.Param("id")) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) postMessage(c *echo.Context) error {
	sess, ok := s.Store.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	}

	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text must not be empty"})
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	sess.History.Append(s.Tok.Encode(text))
	reply, _, err := s.Engine.SampleSequence(c.Request().Context(), sess.Persona, sess.History.Turns(), sess.LangID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	sess.History.Append(reply)

	out := dialogue.RenderReply(s.Tok, s.Specials, reply, dataset.IsCJK(sess.Lang))
	sess.Dialog = append(sess.Dialog,
		transcript.Turn{Speaker: transcript.SpeakerHuman, Text: text},
		transcript.Turn{Speaker: transcript.SpeakerModel, Text: out},
	)

	return c.JSON(http.StatusOK, MessageResponse{
		SessionID: sess.ID,
		Reply:     out,
		Turns:     len(sess.Dialog),
	})
}

func (s *Server) sessionResponse(sess *Session) SessionResponse {
	persona := make([]string, 0, len(sess.Persona))
	for _, sent := range sess.Persona {
		persona = append(persona, s.Tok.Decode(sent, s.Specials.IsSpecial))
	}
	dialog := sess.Dialog
	if dialog == nil {
		dialog = []transcript.Turn{}
	}
	return SessionResponse{
		ID:        sess.ID,
		Lang:      sess.Lang,
		Persona:   persona,
		CreatedAt: sess.CreatedAt.Unix(),
		Dialog:    dialog,
	}
}
