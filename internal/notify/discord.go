package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordSender is the part of *discordgo.Session the notifier uses.
type DiscordSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts reminders to a single channel over the REST API. No gateway connection is opened.
type Discord struct {
	session   DiscordSender
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewDiscordWithSender(s, channelID), nil
}

func NewDiscordWithSender(s DiscordSender, channelID string) *Discord {
	return &Discord{session: s, channelID: channelID}
}

func (d *Discord) Notify(ctx context.Context, msg Message) error {
	content := msg.Body
	if msg.Title != "" {
		content = fmt.Sprintf("**%s**\n%s", msg.Title, msg.Body)
	}
	if _, err := d.session.ChannelMessageSend(d.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	return nil
}
