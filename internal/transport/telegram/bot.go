package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/sandevgo/medrag/internal/service/command"
	"github.com/sandevgo/medrag/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const (
	greeting    = "Hi! Ask me a medical question. Send /clear to start over or /help for the commands.\n\nThis is for educational purposes only and not a substitute for professional medical advice."
	failedReply = "Something went wrong. Please try again."
)

type Chatter interface {
	Handle(ctx context.Context, sessionID, text string) (chat.Reply, error)
	Clear(ctx context.Context, sessionID string)
}

type Bot struct {
	bot    *tele.Bot
	cfg      *config.TelegramConfig
	chat     Chatter
	commands *command.Router
	sender   *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chatter Chatter,
	commands *command.Router,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		chat:     chatter,
		commands: commands,
		sender:   newSender(b),
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || !cfg.IsAllowed(c.Sender().ID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func sessionFor(c tele.Context) string {
	return fmt.Sprintf("telegram-%d", c.Chat().ID)
}

func requestContext(c tele.Context) context.Context {
	ctx, ok := c.Get(baseContextKey).(context.Context)
	if !ok {
		ctx = context.Background()
	}
	return log.With(ctx, "transport", "telegram")
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(greeting)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := requestContext(c)
	logger := log.FromCtx(ctx)

	if out, ok := b.commands.Execute(ctx, sessionFor(c), c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Recipient(), out)
	}

	_ = c.Notify(tele.Typing)

	reply, err := b.chat.Handle(ctx, sessionFor(c), c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		return c.Send(failedReply)
	}

	return b.sender.sendMarkdown(ctx, c.Recipient(), reply.Text)
}
