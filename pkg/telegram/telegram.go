package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/topicline/topicline/pkg/logger"
)

const component = "telegram"

// Icon color for created topics, the light blue Telegram offers by default.
const topicIconColor = 0x6FB9F0

const webhookMaxConnections = 40

// Gateway wraps the Telegram Bot API for a single forum-enabled supergroup:
// it posts into topics, opens new topics, and manages the webhook
// registration.
type Gateway struct {
	bot     *telego.Bot
	groupID int64
}

// Options tune gateway construction.
type Options struct {
	// Proxy overrides the HTTP proxy used to reach api.telegram.org.
	// Empty falls back to the standard environment proxy variables.
	Proxy string
}

func NewGateway(token string, groupID int64, opts Options) (*Gateway, error) {
	var botOpts []telego.BotOption

	if opts.Proxy != "" {
		proxyURL, parseErr := url.Parse(opts.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, parseErr)
		}
		botOpts = append(botOpts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	} else if os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" {
		botOpts = append(botOpts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		}))
	}

	bot, err := telego.NewBot(token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Gateway{bot: bot, groupID: groupID}, nil
}

// SendToTopic posts Markdown text into the given topic of the configured
// group and returns the new message ID.
func (g *Gateway) SendToTopic(ctx context.Context, threadID int, text string) (int, error) {
	params := &telego.SendMessageParams{
		ChatID:    tu.ID(g.groupID),
		Text:      text,
		ParseMode: telego.ModeMarkdown,
	}
	if threadID != 0 {
		params.MessageThreadID = threadID
	}

	msg, err := g.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to send to topic %d: %w", threadID, err)
	}

	logger.DebugCF(component, "Message sent", map[string]interface{}{
		"thread_id":  threadID,
		"message_id": msg.MessageID,
	})
	return msg.MessageID, nil
}

// CreateTopic opens a new forum topic in the configured group and returns
// its thread ID.
func (g *Gateway) CreateTopic(ctx context.Context, title string) (int, error) {
	topic, err := g.bot.CreateForumTopic(ctx, &telego.CreateForumTopicParams{
		ChatID:    tu.ID(g.groupID),
		Name:      title,
		IconColor: topicIconColor,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create topic %q: %w", title, err)
	}

	logger.InfoCF(component, "Forum topic created", map[string]interface{}{
		"thread_id": topic.MessageThreadID,
		"title":     title,
	})
	return topic.MessageThreadID, nil
}

// RegisterWebhook points the bot's webhook at baseURL's webhook endpoint.
// Telegram requires HTTPS here.
func (g *Gateway) RegisterWebhook(ctx context.Context, baseURL string) error {
	webhookURL := strings.TrimRight(baseURL, "/") + "/api/telegram/webhook"
	err := g.bot.SetWebhook(ctx, &telego.SetWebhookParams{
		URL:            webhookURL,
		MaxConnections: webhookMaxConnections,
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook %s: %w", webhookURL, err)
	}
	logger.InfoCF(component, "Webhook registered", map[string]interface{}{
		"url": webhookURL,
	})
	return nil
}

// DeregisterWebhook removes the webhook registration. Used during shutdown,
// best effort.
func (g *Gateway) DeregisterWebhook(ctx context.Context) error {
	if err := g.bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	logger.InfoC(component, "Webhook deleted")
	return nil
}
