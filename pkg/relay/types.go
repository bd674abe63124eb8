package relay

import "context"

// NoTopic is the sentinel thread ID meaning "no forum topic exists yet for
// this conversation, create one". Telegram assigns positive thread IDs.
const NoTopic = 0

// OutboundRequest is one CRM-originated message headed for the Telegram
// group. ThreadID is the topic the CRM believes the conversation lives in,
// or NoTopic. ConversationHandle is the CRM-side conversation ID, used only
// as the title when a topic has to be created and as a correlation trailer
// in the composed message.
type OutboundRequest struct {
	ThreadID           int
	Message            string
	ConversationHandle string
	Subject            string
	Email              string
	SenderLabel        string
}

// DeliveryResult reports where the message ended up. ThreadID is always a
// concrete topic ID; the caller (the CRM) owns the conversation→topic
// mapping and is expected to store it. TopicRecreated implies TopicCreated.
type DeliveryResult struct {
	ThreadID       int
	MessageID      int
	TopicCreated   bool
	TopicRecreated bool
}

// InboundEvent is a normalized Telegram group message as seen by the
// webhook. ThreadID is NoTopic for messages posted outside any topic.
type InboundEvent struct {
	SenderID    int64
	SenderIsBot bool
	SenderName  string
	Text        string
	ThreadID    int
}

// ReplyPayload is the body forwarded to the CRM workflow API for a team
// reply. ChatID carries the topic ID as a string, the CRM's correlation key.
type ReplyPayload struct {
	Message    string `json:"message"`
	ChatID     string `json:"chat_id"`
	SenderType string `json:"sender_type"`
	SenderName string `json:"sender_name"`
}

// TopicSender is the capability the orchestrator needs from the messaging
// platform: post into a topic, open a new topic.
type TopicSender interface {
	SendToTopic(ctx context.Context, threadID int, text string) (messageID int, err error)
	CreateTopic(ctx context.Context, title string) (threadID int, err error)
}

// ReplyForwarder delivers a classified team reply back to the CRM.
type ReplyForwarder interface {
	ForwardReply(ctx context.Context, payload ReplyPayload) error
}
