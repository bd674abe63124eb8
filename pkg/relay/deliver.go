package relay

import (
	"context"
	"strings"

	"github.com/topicline/topicline/pkg/logger"
)

const component = "relay"

// Orchestrator owns the send-or-create-then-send decision for outbound
// messages. It keeps no state between calls; every Deliver is an independent
// bounded chain of at most three remote calls.
type Orchestrator struct {
	sender       TopicSender
	topicInvalid func(error) bool
}

// NewOrchestrator builds an orchestrator around a topic sender and a
// predicate classifying send errors as "the target topic no longer exists".
// The predicate is deliberately pluggable: it encodes platform error-text
// knowledge and must err toward false so unrelated failures are never
// masked as missing topics.
func NewOrchestrator(sender TopicSender, topicInvalid func(error) bool) *Orchestrator {
	if topicInvalid == nil {
		topicInvalid = func(error) bool { return false }
	}
	return &Orchestrator{sender: sender, topicInvalid: topicInvalid}
}

// Deliver posts the request into its topic. ThreadID == NoTopic creates a
// fresh topic first. A direct send that fails because the topic was deleted
// triggers exactly one recreate-and-resend; any other failure is terminal.
func (o *Orchestrator) Deliver(ctx context.Context, req OutboundRequest) (*DeliveryResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	text := senderHeader(req.SenderLabel) + Compose(MessageFields{
		Subject:            req.Subject,
		Body:               req.Message,
		Email:              req.Email,
		ConversationHandle: req.ConversationHandle,
	})

	if req.ThreadID == NoTopic {
		return o.createAndSend(ctx, req.ConversationHandle, text, false)
	}

	messageID, err := o.sender.SendToTopic(ctx, req.ThreadID, text)
	if err == nil {
		return &DeliveryResult{ThreadID: req.ThreadID, MessageID: messageID}, nil
	}
	if !o.topicInvalid(err) {
		return nil, &DeliveryError{Op: "send", Err: err}
	}

	logger.WarnCF(component, "Target topic is gone, recreating", map[string]interface{}{
		"thread_id": req.ThreadID,
		"error":     err.Error(),
	})
	return o.createAndSend(ctx, req.ConversationHandle, text, true)
}

// createAndSend opens a new topic titled with the conversation handle and
// performs a single send into it. No retry loop on either call.
func (o *Orchestrator) createAndSend(ctx context.Context, handle, text string, recreated bool) (*DeliveryResult, error) {
	if handle == "" {
		return nil, ErrNoTopicHandle
	}

	threadID, err := o.sender.CreateTopic(ctx, handle)
	if err != nil {
		return nil, &DeliveryError{Op: "create-topic", Err: err}
	}
	logger.InfoCF(component, "Created topic", map[string]interface{}{
		"thread_id": threadID,
		"title":     handle,
		"recreated": recreated,
	})

	messageID, err := o.sender.SendToTopic(ctx, threadID, text)
	if err != nil {
		return nil, &DeliveryError{Op: "send-to-new-topic", Err: err}
	}

	return &DeliveryResult{
		ThreadID:       threadID,
		MessageID:      messageID,
		TopicCreated:   true,
		TopicRecreated: recreated,
	}, nil
}
