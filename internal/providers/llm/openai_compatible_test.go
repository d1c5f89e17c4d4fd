package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatible_Chat(t *testing.T) {
	var got struct {
		Model       string         `json:"model"`
		Messages    []core.Message `json:"messages"`
		Temperature float64        `json:"temperature"`
		MaxTokens   int            `json:"max_tokens"`
	}
	var headers http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Drink water."}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:      srv.URL + "/",
		APIKey:       "secret",
		AuthHeader:   "Authorization",
		AuthPrefix:   "Bearer ",
		ExtraHeaders: map[string]string{"X-Title": "medrag"},
		Timeout:      time.Second,
	})

	answer, err := p.Chat(context.Background(), []core.Message{
		{Role: core.RoleSystem, Content: "be careful"},
		{Role: core.RoleUser, Content: "I am thirsty"},
	}, core.GenerationParams{Model: "m", Temperature: 0.5, MaxTokens: 300})

	require.NoError(t, err)
	assert.Equal(t, "Drink water.", answer)
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 0.5, got.Temperature)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, core.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, "medrag", headers.Get("X-Title"))
	assert.Equal(t, core.AppUserAgent, headers.Get("User-Agent"))
}

func TestOpenAICompatible_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errSub string
	}{
		{name: "http error", status: http.StatusTooManyRequests, body: `{"error":"rate limited"}`, errSub: "http 429"},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, errSub: "empty choices"},
		{name: "malformed", status: http.StatusOK, body: `not json`, errSub: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: srv.URL})
			_, err := p.Chat(context.Background(), nil, core.GenerationParams{Model: "m", MaxTokens: 1})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}

func TestHosts_AuthHeaders(t *testing.T) {
	tests := []struct {
		name     string
		build    func(url string) *OpenAICompatible
		wantAuth string
	}{
		{name: "ollama without key", build: func(u string) *OpenAICompatible { return NewOllama(u, "", time.Second) }},
		{name: "ollama with key", build: func(u string) *OpenAICompatible { return NewOllama(u, "k", time.Second) }, wantAuth: "Bearer k"},
		{name: "custom", build: func(u string) *OpenAICompatible { return NewCustomOpenAI(u, "c", time.Second) }, wantAuth: "Bearer c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var auth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
			}))
			defer srv.Close()

			_, err := tt.build(srv.URL).Chat(context.Background(), nil, core.GenerationParams{Model: "m", MaxTokens: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuth, auth)
		})
	}
}

func TestNewOpenRouter_AttributionHeaders(t *testing.T) {
	p := NewOpenRouter("key", time.Second)
	assert.Equal(t, openRouterBaseURL, p.baseURL)
	assert.Equal(t, core.AppRepositoryURL, p.headers.Get("HTTP-Referer"))
	assert.Equal(t, core.AppName, p.headers.Get("X-Title"))
	assert.Equal(t, "Bearer key", p.headers.Get("Authorization"))
}
