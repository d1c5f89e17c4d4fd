package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sandevgo/medrag/internal/core"
)

// OpenAI talks to the OpenAI API through the official SDK.
type OpenAI struct {
	client *openai.Client
}

func NewOpenAI(apiKey string, timeout time.Duration) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// retries are a caller policy, never hidden inside a single completion
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &OpenAI{client: openai.NewClient(opts...)}
}

func (o *OpenAI) Chat(ctx context.Context, messages []core.Message, params core.GenerationParams) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    openai.F(msgs),
		Model:       openai.F(params.Model),
		Temperature: openai.F(params.Temperature),
		MaxTokens:   openai.F(int64(params.MaxTokens)),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return completion.Choices[0].Message.Content, nil
}
