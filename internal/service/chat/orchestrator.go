package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/internal/providers/llm"
	"github.com/sandevgo/medrag/internal/service/memory"
	"github.com/sandevgo/medrag/internal/service/prompt"
	"github.com/sandevgo/medrag/internal/service/retrieval"
	"github.com/sandevgo/medrag/pkg/log"
)

// ValidationMessage is returned for empty or whitespace-only input.
const ValidationMessage = "Please enter a valid medical question."

type MemoryStore interface {
	GetOrCreate(sessionID string) []core.Turn
	Append(sessionID string, role core.Role, text string) error
	Clear(sessionID string)
}

type Readiness interface {
	EnsureReady(ctx context.Context) error
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]core.Chunk, error)
}

type Completer interface {
	Complete(ctx context.Context, p core.Prompt) llm.Completion
}

// Reply is what a transport renders back to the user.
type Reply struct {
	SessionID string   `json:"session_id"`
	Text      string   `json:"answer"`
	Sources   []string `json:"sources"`
	// Degraded is set when the answer was produced without context or is the fallback.
	Degraded bool `json:"degraded"`
	Rejected bool `json:"-"`
}

// Orchestrator runs one conversational turn end to end.
type Orchestrator struct {
	memory       MemoryStore
	ready        Readiness
	retriever    Retriever
	completer    Completer
	instructions prompt.Instructions
	k            int
}

func NewOrchestrator(
	mem MemoryStore,
	ready Readiness,
	retriever Retriever,
	completer Completer,
	instructions prompt.Instructions,
	k int,
) *Orchestrator {
	return &Orchestrator{
		memory:       mem,
		ready:        ready,
		retriever:    retriever,
		completer:    completer,
		instructions: instructions,
		k:            k,
	}
}

// Validate reports core.ErrValidation for input that carries no question.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return core.ErrValidation
	}
	return nil
}

// Handle answers text within sessionID. An empty sessionID starts a new session;
// the id in use is returned in Reply.SessionID. Upstream failures degrade the
// reply instead of failing the turn.
func (o *Orchestrator) Handle(ctx context.Context, sessionID, text string) (Reply, error) {
	ctx = log.With(ctx, "request_id", uuid.NewString())
	logger := log.FromCtx(ctx)
	logger.Debug().Str("state", "received").Msg("turn")

	if err := Validate(text); err != nil {
		logger.Debug().Str("state", "rejected").Msg("turn")
		return Reply{SessionID: sessionID, Text: ValidationMessage, Rejected: true}, nil
	}
	question := strings.TrimSpace(text)

	if sessionID == "" {
		id, err := memory.NewSessionID()
		if err != nil {
			return Reply{}, err
		}
		sessionID = id
	}
	ctx = log.With(ctx, "session_id", shortID(sessionID))
	logger = log.FromCtx(ctx)
	logger.Debug().Str("state", "validated").Msg("turn")

	history := o.memory.GetOrCreate(sessionID)
	if err := o.memory.Append(sessionID, core.RoleUser, question); err != nil {
		return Reply{}, fmt.Errorf("record user turn: %w", err)
	}

	logger.Debug().Str("state", "retrieving").Msg("turn")
	chunks, degraded := o.retrieve(ctx, question)

	logger.Debug().Str("state", "composing").Int("history", len(history)).Int("chunks", len(chunks)).Msg("turn")
	p := prompt.Compose(o.instructions, history, retrieval.Texts(chunks), question)

	logger.Debug().Str("state", "completing").Msg("turn")
	completion := o.completer.Complete(ctx, p)
	if !completion.OK() {
		degraded = true
	}

	if err := o.memory.Append(sessionID, core.RoleAssistant, completion.Text); err != nil {
		return Reply{}, fmt.Errorf("record assistant turn: %w", err)
	}
	logger.Debug().Str("state", "recorded").Msg("turn")

	reply := Reply{
		SessionID: sessionID,
		Text:      completion.Text,
		Sources:   retrieval.Sources(chunks),
		Degraded:  degraded,
	}
	logger.Debug().Str("state", "responded").Bool("degraded", degraded).Msg("turn")
	return reply, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, question string) ([]core.Chunk, bool) {
	logger := log.FromCtx(ctx)

	if err := o.ready.EnsureReady(ctx); err != nil {
		if errors.Is(err, core.ErrInitialization) {
			logger.Error().Err(err).Str("kind", "initialization").Msg("retrieval not available, answering without context")
		} else {
			logger.Warn().Err(err).Str("kind", "retrieval_unavailable").Msg("retrieval not ready, answering without context")
		}
		return nil, true
	}

	chunks, err := o.retriever.Retrieve(ctx, question, o.k)
	if err != nil {
		logger.Warn().Err(err).Str("kind", "retrieval_unavailable").Msg("retrieval failed, answering without context")
		return nil, true
	}
	return chunks, false
}

// Clear drops the conversation of sessionID. Unknown ids are ignored.
func (o *Orchestrator) Clear(ctx context.Context, sessionID string) {
	o.memory.Clear(sessionID)
	log.FromCtx(ctx).Debug().Str("session_id", shortID(sessionID)).Msg("session cleared")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
