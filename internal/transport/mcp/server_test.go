package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatter struct {
	cleared []string
}

func (f *fakeChatter) Handle(_ context.Context, sessionID, text string) (chat.Reply, error) {
	if text == "" {
		return chat.Reply{Text: chat.ValidationMessage, Rejected: true}, nil
	}
	if sessionID == "" {
		sessionID = "new-session"
	}
	return chat.Reply{SessionID: sessionID, Text: "answer: " + text, Sources: []string{"book.pdf"}}, nil
}

func (f *fakeChatter) Clear(_ context.Context, sessionID string) {
	f.cleared = append(f.cleared, sessionID)
}

func newClient(t *testing.T, chatter *fakeChatter) *client.Client {
	t.Helper()
	ctx := context.Background()

	cli, err := client.NewInProcessClient(NewServer(chatter).MCP())
	require.NoError(t, err)
	require.NoError(t, cli.Start(ctx))
	t.Cleanup(func() { _ = cli.Close() })

	req := mcpproto.InitializeRequest{}
	req.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcpproto.Implementation{Name: "test", Version: "0"}
	_, err = cli.Initialize(ctx, req)
	require.NoError(t, err)
	return cli
}

func callTool(t *testing.T, cli *client.Client, name string, args map[string]any) *mcpproto.CallToolResult {
	t.Helper()
	req := mcpproto.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := cli.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

func textOf(t *testing.T, res *mcpproto.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcpproto.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListTools(t *testing.T) {
	cli := newClient(t, &fakeChatter{})

	res, err := cli.ListTools(context.Background(), mcpproto.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolAsk, ToolClear}, names)
}

func TestAsk(t *testing.T) {
	cli := newClient(t, &fakeChatter{})

	res := callTool(t, cli, ToolAsk, map[string]any{"question": "What is asthma?", "session_id": "s1"})
	require.False(t, res.IsError)

	var out askResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
	assert.Equal(t, askResult{SessionID: "s1", Answer: "answer: What is asthma?", Sources: []string{"book.pdf"}}, out)
}

func TestAsk_Errors(t *testing.T) {
	cli := newClient(t, &fakeChatter{})

	res := callTool(t, cli, ToolAsk, map[string]any{})
	assert.True(t, res.IsError)

	res = callTool(t, cli, ToolAsk, map[string]any{"question": ""})
	assert.True(t, res.IsError)
	assert.Equal(t, chat.ValidationMessage, textOf(t, res))
}

func TestClear(t *testing.T) {
	chatter := &fakeChatter{}
	cli := newClient(t, chatter)

	res := callTool(t, cli, ToolClear, map[string]any{"session_id": "s1"})
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"s1"}, chatter.cleared)
}
