package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/transport/telegram"
	"github.com/sandevgo/medrag/internal/transport/web"
	"github.com/sandevgo/medrag/pkg/log"
	"github.com/sandevgo/medrag/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web chat and the optional Telegram bot",
	Long:  `Starts every enabled transport and blocks until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting medrag")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		services := []srv.Service{srv.NewCleanup(a.Close)}

		if a.cfg.EnableWeb {
			services = append(services, web.NewServer(config.NewWebConfig(ctx), a.chat, a))
		}
		if a.cfg.EnableTelegram {
			bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), a.chat, a.commands)
			if err != nil {
				return err
			}
			services = append(services, bot)
		}
		if len(services) == 1 {
			logger.Warn().Msg("no transport enabled, set ENABLE_WEB or ENABLE_TELEGRAM")
		}

		srv.StartServices(ctx, services)
		srv.ShutdownServices(ctx, services)

		logger.Info().Msg("medrag has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
