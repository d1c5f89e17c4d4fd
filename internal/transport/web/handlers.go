package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/sandevgo/medrag/pkg/conv"
	"github.com/sandevgo/medrag/pkg/log"
)

const maxBodyBytes = 64 << 10

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	chat.Reply
	AnswerHTML string `json:"answer_html,omitempty"`
}

func newChatResponse(reply chat.Reply) chatResponse {
	if reply.Sources == nil {
		reply.Sources = []string{}
	}
	return chatResponse{Reply: reply, AnswerHTML: conv.MarkdownToHTML(reply.Text)}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexPage)
}

// handleGet answers a form post with field msg as plain text.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reply, err := s.chat.Handle(r.Context(), s.sessionFromCookie(r), r.PostForm.Get("msg"))
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("turn failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !reply.Rejected {
		s.setSessionCookie(w, reply.SessionID)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, reply.Text)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = s.sessionFromCookie(r)
	}

	reply, err := s.chat.Handle(r.Context(), req.SessionID, req.Message)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("turn failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if reply.Rejected {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: reply.Text})
		return
	}

	s.setSessionCookie(w, reply.SessionID)
	writeJSON(w, http.StatusOK, newChatResponse(reply))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
	}
	id := req.SessionID
	if id == "" {
		id = s.sessionFromCookie(r)
	}
	if id != "" {
		s.chat.Clear(r.Context(), id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Retrieval: "unknown"}
	if s.health != nil {
		status = s.health.Status(r.Context())
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) sessionFromCookie(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	if id == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
