package discord

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"

	"BangerBoard/internal/ports"
)

const embedColor = 0xF5A623

// webhookExecutor is the slice of *discordgo.Session the notifier needs.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts moderation requests to a Discord channel through an incoming webhook.
type Notifier struct {
	webhookID string
	token     string
	session   webhookExecutor
}

var _ ports.Messenger = (*Notifier)(nil)

// NewNotifier parses a https://discord.com/api/webhooks/<id>/<token> URL.
func NewNotifier(webhookURL string) (*Notifier, error) {
	id, tok, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhook execution is authorized by the token in the path; no bot token is needed.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Notifier{webhookID: id, token: tok, session: session}, nil
}

// ParseWebhookURL extracts the webhook id and token.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", errors.New("webhook url must look like .../api/webhooks/<id>/<token>")
}

func (n *Notifier) Name() string { return "discord" }

// Send posts the message as an embed with one field per link.
func (n *Notifier) Send(ctx context.Context, msg ports.Message) error {
	params := &discordgo.WebhookParams{
		Username: "BangerBoard",
		Embeds:   []*discordgo.MessageEmbed{Embed(msg)},
	}
	if _, err := n.session.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("execute webhook: %w", err)
	}
	return nil
}

// Embed renders a message as a Discord embed.
func Embed(msg ports.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Subject,
		Description: msg.Body,
		Color:       embedColor,
	}
	for _, l := range msg.Links {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   l.Label,
			Value:  fmt.Sprintf("[%s](%s)", l.Label, l.URL),
			Inline: true,
		})
	}
	return embed
}
