package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Provider    string        `env:"LLM_PROVIDER" envDefault:"groq"`
	Temperature float64       `env:"LLM_TEMPERATURE"`
	MaxTokens   int           `env:"LLM_MAX_TOKENS"`
	Timeout     time.Duration `env:"LLM_TIMEOUT"`
	APIKey      string        `env:"GROQ_API_KEY"`
	Token       string        `env:"TELEGRAM_TOKEN,required,notEmpty"`
	AllowedIDs  []int64       `env:"TELEGRAM_ALLOWED_IDS" envSeparator:";"`
	Debug       bool          `env:"MEDRAG_DEBUG"`
	Title       string        `env:"TITLE"`
	untagged    string
	NoTag       string
}

func TestMarshalEnv(t *testing.T) {
	c := &sample{
		Provider:    "groq",
		Temperature: 0.5,
		MaxTokens:   300,
		Timeout:     90 * time.Second,
		APIKey:      "gsk_secret",
		Token:       "123:abc",
		AllowedIDs:  []int64{1, 2},
		Title:       "Medical Chatbot",
		untagged:    "x",
		NoTag:       "y",
	}

	got, err := MarshalEnv(c)
	require.NoError(t, err)
	assert.Equal(t, `LLM_PROVIDER=groq
LLM_TEMPERATURE=0.5
LLM_MAX_TOKENS=300
LLM_TIMEOUT=1m30s
GROQ_API_KEY=gsk_secret
TELEGRAM_TOKEN=123:abc
TELEGRAM_ALLOWED_IDS=1;2
TITLE="Medical Chatbot"
`, got)

	redactedOut, err := MarshalEnv(c, WithRedactedSecrets())
	require.NoError(t, err)
	assert.Contains(t, redactedOut, "GROQ_API_KEY=********\n")
	assert.Contains(t, redactedOut, "TELEGRAM_TOKEN=********\n")
	assert.Contains(t, redactedOut, "LLM_PROVIDER=groq\n")
}

func TestMarshalEnv_ZeroValues(t *testing.T) {
	got, err := MarshalEnv(&sample{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = MarshalEnv(&sample{}, WithZeroValues())
	require.NoError(t, err)
	assert.Contains(t, got, "MEDRAG_DEBUG=false\n")
	assert.Contains(t, got, "LLM_PROVIDER=\n")
}

func TestMarshalEnv_NotAStruct(t *testing.T) {
	_, err := MarshalEnv(sample{})
	assert.Error(t, err)
}
