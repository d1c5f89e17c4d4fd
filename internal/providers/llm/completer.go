package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/pkg/log"
)

// FallbackAnswer is returned to the user whenever the model cannot answer.
const FallbackAnswer = "The AI model is temporarily unavailable. Please try again."

var errEmptyAnswer = errors.New("empty answer")

// Completion is the outcome of a single completion attempt.
// Err is nil on success; otherwise Text holds FallbackAnswer.
type Completion struct {
	Text string
	Err  *core.CompletionError
}

func (c Completion) OK() bool {
	return c.Err == nil
}

// Completer issues exactly one provider call per prompt and never fails loudly.
type Completer struct {
	provider core.ChatProvider
	name     string
	params   core.GenerationParams
	timeout  time.Duration
}

func NewCompleter(provider core.ChatProvider, name string, params core.GenerationParams, timeout time.Duration) *Completer {
	return &Completer{
		provider: provider,
		name:     name,
		params:   params,
		timeout:  timeout,
	}
}

func (c *Completer) Complete(ctx context.Context, p core.Prompt) (out Completion) {
	logger := log.FromCtx(ctx)

	defer func() {
		if r := recover(); r != nil {
			out = c.fail(fmt.Errorf("provider panic: %v", r))
			logger.Error().Str("kind", "completion_unavailable").Interface("panic", r).Msg("completion provider panicked")
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.provider.Chat(ctx, p.Messages(), c.params)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyAnswer
	}
	if err != nil {
		logger.Warn().
			Err(err).
			Str("kind", "completion_unavailable").
			Str("provider", c.name).
			Dur("took", time.Since(start)).
			Msg("completion failed")
		return c.fail(err)
	}

	logger.Debug().
		Str("provider", c.name).
		Dur("took", time.Since(start)).
		Int("answer_len", len(text)).
		Msg("completion received")
	return Completion{Text: strings.TrimSpace(text)}
}

func (c *Completer) fail(err error) Completion {
	return Completion{
		Text: FallbackAnswer,
		Err:  &core.CompletionError{Provider: c.name, Err: err},
	}
}
