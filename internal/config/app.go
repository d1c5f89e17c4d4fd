package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medrag/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MEDRAG_RUNTIME_PATH" envDefault:".medrag"`
	LogFormat   string `env:"MEDRAG_LOG_FORMAT" envDefault:"console"`

	// Conversation memory window (turns kept per session) and retrieval fan-out.
	MemoryWindow int `env:"MEMORY_WINDOW_SIZE" envDefault:"10"`
	RetrievalK   int `env:"RETRIEVAL_K" envDefault:"3"`

	// Transport Flags
	EnableWeb      bool `env:"ENABLE_WEB" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) Validate() error {
	if c.MemoryWindow < 1 {
		return fmt.Errorf("MEMORY_WINDOW_SIZE must be >= 1, got %d", c.MemoryWindow)
	}
	if c.RetrievalK < 1 {
		return fmt.Errorf("RETRIEVAL_K must be >= 1, got %d", c.RetrievalK)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetPromptPath() string {
	return filepath.Join(c.RuntimePath, "prompt.yaml")
}

func (c AppConfig) GetChromemPath() string {
	return filepath.Join(c.RuntimePath, "chromem")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "index.db")
}

func (c AppConfig) IsJSONLog() bool {
	return c.LogFormat == "json"
}
