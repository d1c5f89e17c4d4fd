package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/medrag/internal/core"
)

type Clearer interface {
	Clear(ctx context.Context, sessionID string)
}

// Reporter describes retrieval readiness. Stats is nil until the index is up.
type Reporter interface {
	Report(ctx context.Context) (state string, stats *core.IndexStats)
}

// NewRouter registers /clear, /status and /help.
func NewRouter(chat Clearer, reporter Reporter) *Router {
	r := New([]Command{
		&ClearCommand{chat: chat},
		&StatusCommand{reporter: reporter},
	})
	help := &HelpCommand{router: r}
	r.commands[help.Name()] = help
	return r
}

type ClearCommand struct {
	chat Clearer
}

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Forget this conversation" }

func (c *ClearCommand) Execute(ctx context.Context, sessionID string, _ []string) (string, error) {
	c.chat.Clear(ctx, sessionID)
	return "Conversation cleared.", nil
}

type StatusCommand struct {
	reporter Reporter
}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Show knowledge base status" }

func (c *StatusCommand) Execute(ctx context.Context, _ string, _ []string) (string, error) {
	state, stats := c.reporter.Report(ctx)
	body := field("Retrieval", state)
	if stats != nil {
		body += field("Index", fmt.Sprintf("%s (%s)", stats.Name, stats.Kind)) +
			field("Passages", strconv.Itoa(stats.Documents))
	}
	return join(heading("Knowledge base"), body), nil
}

type HelpCommand struct {
	router *Router
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List commands" }

func (c *HelpCommand) Execute(context.Context, string, []string) (string, error) {
	var items []string
	for _, cmd := range c.router.ListCommands() {
		items = append(items, fmt.Sprintf("/%s  %s", cmd.Name(), cmd.Description()))
	}
	return join(heading("Commands"), bullets(items)), nil
}
