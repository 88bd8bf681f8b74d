package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTelegram struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

type fakeDiscord struct {
	channel string
	content string
	err     error
}

func (f *fakeDiscord) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel, f.content = channelID, content
	return &discordgo.Message{}, f.err
}

type failing struct{ err error }

func (f failing) Notify(context.Context, Message) error { return f.err }

var reminder = Message{Key: "plan_1", Title: "Medicine Reminder", Body: "Time to take your Vitamin D (1 tablet) after food"}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "Medicine Reminder\nTime to take your Vitamin D (1 tablet) after food", reminder.Text())
	assert.Equal(t, "body only", Message{Body: "body only"}.Text())
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLog(zap.New(core))

	require.NoError(t, n.Notify(context.Background(), reminder))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Reminder", entry.Message)
	assert.Equal(t, "plan_1", entry.ContextMap()["key"])
}

func TestTelegram(t *testing.T) {
	api := &fakeTelegram{}
	n := NewTelegramWithSender(api, 42)

	require.NoError(t, n.Notify(context.Background(), reminder))
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(42), api.sent[0].ChatID)
	assert.Equal(t, reminder.Text(), api.sent[0].Text)

	api.err = errors.New("forbidden")
	assert.ErrorContains(t, n.Notify(context.Background(), reminder), "telegram")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.Notify(ctx, reminder))
}

func TestDiscord(t *testing.T) {
	s := &fakeDiscord{}
	n := NewDiscordWithSender(s, "chan-1")

	require.NoError(t, n.Notify(context.Background(), reminder))
	assert.Equal(t, "chan-1", s.channel)
	assert.Equal(t, "**Medicine Reminder**\nTime to take your Vitamin D (1 tablet) after food", s.content)

	s.err = errors.New("rate limited")
	assert.ErrorContains(t, n.Notify(context.Background(), reminder), "discord")
}

func TestMultiJoinsErrors(t *testing.T) {
	api := &fakeTelegram{}
	first := errors.New("first")
	second := errors.New("second")
	m := Multi{failing{first}, NewTelegramWithSender(api, 1), failing{second}}

	err := m.Notify(context.Background(), reminder)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Len(t, api.sent, 1, "a failing notifier does not stop the others")

	assert.NoError(t, Multi{NewLog(zap.NewNop())}.Notify(context.Background(), reminder))
}
