package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/sandevgo/medrag/pkg/log"
)

const sessionCookie = "medrag_session"

type Chatter interface {
	Handle(ctx context.Context, sessionID, text string) (chat.Reply, error)
	Clear(ctx context.Context, sessionID string)
}

// Health reports retrieval readiness for /healthz.
type Health interface {
	Status(ctx context.Context) HealthStatus
}

type HealthStatus struct {
	Retrieval string           `json:"retrieval"`
	Index     *core.IndexStats `json:"index,omitempty"`
}

type Server struct {
	cfg    *config.WebConfig
	chat   Chatter
	health Health
	srv    *http.Server

	pongWait time.Duration
}

func NewServer(cfg *config.WebConfig, chatter Chatter, health Health) *Server {
	s := &Server{
		cfg:    cfg,
		chat:   chatter,
		health: health,

		pongWait: wsPongWait,
	}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler wrapped in recovery and request logging.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /get", s.handleGet)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/clear", s.handleClear)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return withLogger(ctx, recoverer(requestLogger(mux)))
}

func (s *Server) Start(ctx context.Context) error {
	s.srv.Handler = s.Handler(ctx)
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr).Msg("starting web server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
