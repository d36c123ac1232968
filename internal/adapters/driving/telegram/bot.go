// Package telegram answers questions sent to a Telegram bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("telegram: bot token is required")

// maxMessageLength is Telegram's limit for one message, in characters.
const maxMessageLength = 4096

const helpText = `Ask me anything about the Python documentation.

Send a question as a normal message and I will answer it from the indexed docs, listing the sections I used.

Commands:
/start - introduction
/help - this message`

const startText = "Hi! I answer questions about the Python documentation. Just send me a question."

// Sender is the part of the Telegram API the bot replies through.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// Bot relays chat messages to the ask pipeline.
type Bot struct {
	ask        driving.AskService
	maxResults int
	api        *bot.Bot
}

// Option configures a Bot.
type Option func(*Bot)

// WithMaxResults sets how many passages each answer is grounded on.
func WithMaxResults(n int) Option {
	return func(b *Bot) {
		b.maxResults = n
	}
}

// New connects to the Bot API with token.
func New(token string, ask driving.AskService, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	b := newBot(ask, opts...)

	api, err := bot.New(token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("telegram: connecting: %w", err)
	}
	b.api = api
	return b, nil
}

func newBot(ask driving.AskService, opts ...Option) *Bot {
	b := &Bot{ask: ask, maxResults: domain.DefaultTopK}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	logger.Info("Telegram bot started")
	b.api.Start(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, api *bot.Bot, update *models.Update) {
	b.handle(ctx, api, update)
}

// handle answers one update. Non-text updates are ignored.
func (b *Bot) handle(ctx context.Context, s Sender, update *models.Update) {
	if update == nil || update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch command(text) {
	case "/start":
		b.reply(ctx, s, chatID, startText)
		return
	case "/help":
		b.reply(ctx, s, chatID, helpText)
		return
	case "":
	default:
		b.reply(ctx, s, chatID, "Unknown command. "+helpText)
		return
	}

	if _, err := s.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		logger.Debug("telegram: chat action failed: %v", err)
	}

	answer, err := b.ask.Ask(ctx, text, b.maxResults)
	if err != nil {
		b.reply(ctx, s, chatID, "Sorry: "+publicMessage(err))
		return
	}
	b.reply(ctx, s, chatID, FormatAnswer(answer))
}

func (b *Bot) reply(ctx context.Context, s Sender, chatID int64, text string) {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   domain.Truncate(text, maxMessageLength),
	})
	if err != nil {
		logger.ErrorFields(err, "telegram: send failed", map[string]any{"chat_id": chatID})
	}
}

// command returns the bot command at the start of text, without any
// @botname suffix, or "" when text is not a command.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}

// FormatAnswer renders an answer and its sources as plain text.
func FormatAnswer(a *domain.Answer) string {
	var sb strings.Builder
	sb.WriteString(a.Text)
	if len(a.Sources) == 0 {
		return sb.String()
	}
	sb.WriteString("\n\nSources:")
	for i, src := range a.Sources {
		fmt.Fprintf(&sb, "\n%d. %s (chunk %d)", i+1, src.SourceKey, src.ChunkIndex)
	}
	return sb.String()
}

// publicMessage never exposes provider detail.
func publicMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var pe *domain.PublicError
	if errors.As(err, &pe) {
		return pe.Message
	}
	logger.Error(err, "telegram: ask failed")
	return domain.UnavailableMessage
}
