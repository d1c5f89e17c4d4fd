package telegram

import (
	"context"
	"strings"

	"github.com/sandevgo/medrag/pkg/conv"
	"github.com/sandevgo/medrag/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in pieces if needed.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string) error {
	logger := log.FromCtx(ctx)

	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil
	}

	for i, part := range conv.SplitMessage(html, maxTelegramMsgLen) {
		if _, err := s.bot.Send(to, part, tele.ModeHTML); err != nil {
			logger.Error().Err(err).Int("part", i).Int("len", len(part)).Msg("failed to send telegram message")
			return err
		}
	}
	return nil
}
