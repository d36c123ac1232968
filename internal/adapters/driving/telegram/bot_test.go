package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

type fakeSender struct {
	sent    []*bot.SendMessageParams
	actions int
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, p)
	return &models.Message{}, nil
}

func (f *fakeSender) SendChatAction(_ context.Context, _ *bot.SendChatActionParams) (bool, error) {
	f.actions++
	return true, nil
}

type fakeAsk struct {
	answer     *domain.Answer
	err        error
	question   string
	maxResults int
	calls      int
}

func (f *fakeAsk) Ask(_ context.Context, question string, maxResults int) (*domain.Answer, error) {
	f.calls++
	f.question = question
	f.maxResults = maxResults
	return f.answer, f.err
}

func textUpdate(text string) *models.Update {
	return &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: 42},
		Text: text,
	}}
}

func TestHandle_Question(t *testing.T) {
	ask := &fakeAsk{answer: &domain.Answer{
		Text: "Use a list.",
		Sources: []domain.SourceSummary{
			{SourceKey: "tutorial", ChunkIndex: 3},
			{SourceKey: "datastructures", ChunkIndex: 0},
		},
	}}
	sender := &fakeSender{}
	b := newBot(ask, WithMaxResults(5))

	b.handle(context.Background(), sender, textUpdate("  How do I store items?  "))

	assert.Equal(t, "How do I store items?", ask.question)
	assert.Equal(t, 5, ask.maxResults)
	assert.Equal(t, 1, sender.actions)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, any(int64(42)), sender.sent[0].ChatID)
	assert.Equal(t, "Use a list.\n\nSources:\n1. tutorial (chunk 3)\n2. datastructures (chunk 0)", sender.sent[0].Text)
}

func TestHandle_Commands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/start", startText},
		{"/help", helpText},
		{"/help@ragdocs_bot", helpText},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ask := &fakeAsk{}
			sender := &fakeSender{}
			newBot(ask).handle(context.Background(), sender, textUpdate(tt.text))

			assert.Zero(t, ask.calls)
			require.Len(t, sender.sent, 1)
			assert.Equal(t, tt.want, sender.sent[0].Text)
		})
	}
}

func TestHandle_UnknownCommand(t *testing.T) {
	ask := &fakeAsk{}
	sender := &fakeSender{}
	newBot(ask).handle(context.Background(), sender, textUpdate("/reindex"))

	assert.Zero(t, ask.calls)
	require.Len(t, sender.sent, 1)
	assert.True(t, strings.HasPrefix(sender.sent[0].Text, "Unknown command."))
}

func TestHandle_IgnoresNonText(t *testing.T) {
	ask := &fakeAsk{}
	sender := &fakeSender{}
	b := newBot(ask)

	b.handle(context.Background(), sender, &models.Update{})
	b.handle(context.Background(), sender, textUpdate("   "))

	assert.Zero(t, ask.calls)
	assert.Empty(t, sender.sent)
}

func TestHandle_ErrorsArePublic(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err:  domain.NewValidationError("question", "question must be at most 500 characters (got 600)"),
			want: "Sorry: question must be at most 500 characters (got 600)",
		},
		{
			name: "public",
			err:  &domain.PublicError{Category: domain.CategorySearch, Message: domain.UnavailableMessage, Err: domain.ErrSearchFailure},
			want: "Sorry: " + domain.UnavailableMessage,
		},
		{
			name: "raw",
			err:  errors.New("azure error (status 500): internal detail"),
			want: "Sorry: " + domain.UnavailableMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			newBot(&fakeAsk{err: tt.err}).handle(context.Background(), sender, textUpdate("q"))

			require.Len(t, sender.sent, 1)
			assert.Equal(t, tt.want, sender.sent[0].Text)
		})
	}
}

func TestFormatAnswer_NoSources(t *testing.T) {
	assert.Equal(t, "No idea.", FormatAnswer(&domain.Answer{Text: "No idea.", Sources: []domain.SourceSummary{}}))
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New("", &fakeAsk{})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "", command("hello"))
	assert.Equal(t, "/start", command("/START now"))
	assert.Equal(t, "/help", command("/help@bot"))
}
