package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/sandevgo/medrag/internal/service/command"
	"github.com/sandevgo/medrag/internal/service/ui"
	"github.com/sandevgo/medrag/pkg/log"
)

const defaultSessionID = "cli-local"

type Chatter interface {
	Handle(ctx context.Context, sessionID, text string) (chat.Reply, error)
	Clear(ctx context.Context, sessionID string)
}

// lineReader is the part of *readline.Instance the REPL needs.
type lineReader interface {
	Readline() (string, error)
	Stdout() io.Writer
	Close() error
}

type ReadLine struct {
	chat     Chatter
	commands *command.Router
	rl       lineReader
}

func NewReadLine(chatter Chatter, commands *command.Router, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.PromptStyle.Render("you> "),
		HistoryFile:     filepath.Join(cfg.GetRuntimePath(), "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{chat: chatter, commands: commands, rl: rl}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	out := r.rl.Stdout()
	fmt.Fprintln(out, ui.DescStyle.Render("Ask a medical question. /help lists commands, exit quits."))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if res, ok := r.commands.Execute(ctx, defaultSessionID, line); ok {
			fmt.Fprintln(out, ui.DescStyle.Render(res))
			continue
		}

		reply, err := r.chat.Handle(ctx, defaultSessionID, line)
		if err != nil {
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, FormatReply(reply))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

// FormatReply renders a reply for the terminal, with sources underneath.
func FormatReply(reply chat.Reply) string {
	var b strings.Builder
	b.WriteString(ui.AnswerStyle.Render(reply.Text))
	if len(reply.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(ui.DescStyle.Render("sources: " + strings.Join(reply.Sources, ", ")))
	}
	return b.String()
}
