package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/topicline/topicline/pkg/logger"
	"github.com/topicline/topicline/pkg/relay"
)

const component = "crm"

// The Bubble workflow that ingests team replies.
const receiveWorkflowPath = "/api/1.1/wf/receive_telegram"

// Client talks to the CRM's workflow API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient}
}

// ForwardReply posts a team reply into the CRM. Non-2xx responses are
// errors; there is no retry, the webhook caller surfaces the failure.
func (c *Client) ForwardReply(ctx context.Context, payload relay.ReplyPayload) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(receiveWorkflowPath)
	if err != nil {
		return fmt.Errorf("CRM request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("CRM returned status %d: %s", resp.StatusCode(), resp.String())
	}

	logger.InfoCF(component, "Reply forwarded to CRM", map[string]interface{}{
		"chat_id": payload.ChatID,
		"status":  resp.StatusCode(),
	})
	return nil
}
