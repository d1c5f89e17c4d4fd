package mcp

import (
	"context"
	"encoding/json"
	"io"
	"os"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/sandevgo/medrag/pkg/log"
)

const (
	ToolAsk   = "ask_medical_question"
	ToolClear = "clear_session"
)

type Chatter interface {
	Handle(ctx context.Context, sessionID, text string) (chat.Reply, error)
	Clear(ctx context.Context, sessionID string)
}

// Server exposes the chatbot as MCP tools over stdio.
type Server struct {
	chat  Chatter
	mcp   *server.MCPServer
	stdio *server.StdioServer
	in    io.Reader
	out   io.Writer
}

func NewServer(chatter Chatter) *Server {
	s := &Server{
		chat: chatter,
		in:   os.Stdin,
		out:  os.Stdout,
	}

	s.mcp = server.NewMCPServer(core.AppName, core.AppVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.mcp.AddTool(mcpproto.NewTool(ToolAsk,
		mcpproto.WithDescription("Answer a medical question using retrieved reference material. Educational use only."),
		mcpproto.WithString("question", mcpproto.Required(), mcpproto.Description("The medical question to answer")),
		mcpproto.WithString("session_id", mcpproto.Description("Conversation to continue; omit to start a new one")),
	), s.handleAsk)

	s.mcp.AddTool(mcpproto.NewTool(ToolClear,
		mcpproto.WithDescription("Forget the conversation history of a session."),
		mcpproto.WithString("session_id", mcpproto.Required(), mcpproto.Description("Session to clear")),
	), s.handleClear)

	s.stdio = server.NewStdioServer(s.mcp)
	return s
}

// MCP returns the underlying server, for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting mcp stdio server")
	return s.stdio.Listen(ctx, s.in, s.out)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

type askResult struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	Degraded  bool     `json:"degraded"`
}

func (s *Server) handleAsk(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	reply, err := s.chat.Handle(log.With(ctx, "transport", "mcp"), req.GetString("session_id", ""), question)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("turn failed")
		return mcpproto.NewToolResultError("internal error"), nil
	}
	if reply.Rejected {
		return mcpproto.NewToolResultError(reply.Text), nil
	}

	sources := reply.Sources
	if sources == nil {
		sources = []string{}
	}
	data, err := json.Marshal(askResult{
		SessionID: reply.SessionID,
		Answer:    reply.Text,
		Sources:   sources,
		Degraded:  reply.Degraded,
	})
	if err != nil {
		return nil, err
	}
	return mcpproto.NewToolResultText(string(data)), nil
}

func (s *Server) handleClear(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	s.chat.Clear(ctx, id)
	return mcpproto.NewToolResultText("cleared"), nil
}
