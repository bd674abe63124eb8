package relay

import (
	"strconv"
	"strings"
)

// IgnoreReason says why an inbound event produced no CRM forward.
type IgnoreReason string

const (
	IgnoreBotOrigin     IgnoreReason = "bot-origin"
	IgnoreNoText        IgnoreReason = "no-text"
	IgnoreNonTeamSender IgnoreReason = "non-team-sender"
	IgnoreNonTopic      IgnoreReason = "non-topic-message"
)

const defaultSenderName = "Team Member"

// Filter classifies inbound Telegram group messages into CRM-bound team
// replies or no-ops. Pure: the caller performs the actual forwarding.
type Filter struct {
	isTeamSender func(userID int64) bool
}

// NewFilter builds a filter. isTeamSender may be nil, meaning any non-bot
// sender counts as team.
func NewFilter(isTeamSender func(userID int64) bool) *Filter {
	return &Filter{isTeamSender: isTeamSender}
}

// Classify applies the routing rules in order, first match wins. It returns
// a payload and empty reason for routed events, nil and the reason
// otherwise.
func (f *Filter) Classify(ev InboundEvent) (*ReplyPayload, IgnoreReason) {
	if ev.SenderIsBot {
		return nil, IgnoreBotOrigin
	}
	if strings.TrimSpace(ev.Text) == "" {
		return nil, IgnoreNoText
	}
	if f.isTeamSender != nil && !f.isTeamSender(ev.SenderID) {
		return nil, IgnoreNonTeamSender
	}
	if ev.ThreadID == NoTopic {
		return nil, IgnoreNonTopic
	}

	name := ev.SenderName
	if name == "" {
		name = defaultSenderName
	}
	return &ReplyPayload{
		Message:    ev.Text,
		ChatID:     strconv.Itoa(ev.ThreadID),
		SenderType: "team",
		SenderName: name,
	}, ""
}
