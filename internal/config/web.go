package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medrag/pkg/log"
)

type WebConfig struct {
	Addr         string        `env:"WEB_ADDR" envDefault:"127.0.0.1:5000"`
	ReadTimeout  time.Duration `env:"WEB_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WEB_WRITE_TIMEOUT" envDefault:"120s"`
	CookieSecure bool          `env:"WEB_COOKIE_SECURE" envDefault:"false"`
}

func NewWebConfig(ctx context.Context) *WebConfig {
	c := &WebConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Web config")
	}
	return c
}
