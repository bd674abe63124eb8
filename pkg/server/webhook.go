package server

import (
	"encoding/json"
	"net/http"

	"github.com/mymmrac/telego"

	"github.com/topicline/topicline/pkg/logger"
	"github.com/topicline/topicline/pkg/relay"
)

// handleWebhook receives Telegram updates and forwards team replies to the
// CRM. Uninteresting updates (bots, non-team senders, messages outside a
// topic) answer 200 with an explanatory body so Telegram does not redeliver
// them; 4xx/5xx is reserved for malformed payloads and real failures.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var update telego.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}
	if update.Message == nil {
		writeError(w, http.StatusBadRequest, "No message object")
		return
	}

	ev := inboundEvent(update.Message)
	payload, reason := s.filter.Classify(ev)
	if payload == nil {
		s.writeIgnored(w, reason)
		return
	}

	if err := s.forwarder.ForwardReply(r.Context(), *payload); err != nil {
		fwdErr := &relay.ForwardingError{Err: err}
		logger.ErrorCF(component, "Webhook forwarding failed", map[string]interface{}{
			"chat_id": payload.ChatID,
			"error":   err.Error(),
		})
		writeErrorDetails(w, http.StatusInternalServerError,
			"Failed to process webhook", fwdErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// inboundEvent normalizes a Telegram message. From is nil for channel posts
// and service messages; those fall through the filter as ordinary non-team
// traffic.
func inboundEvent(msg *telego.Message) relay.InboundEvent {
	ev := relay.InboundEvent{
		Text:     msg.Text,
		ThreadID: msg.MessageThreadID,
	}
	if msg.From != nil {
		ev.SenderID = msg.From.ID
		ev.SenderIsBot = msg.From.IsBot
		ev.SenderName = msg.From.FirstName
	}
	return ev
}

func (s *Server) writeIgnored(w http.ResponseWriter, reason relay.IgnoreReason) {
	logger.DebugCF(component, "Webhook ignored", map[string]interface{}{
		"reason": string(reason),
	})

	switch reason {
	case relay.IgnoreBotOrigin:
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Ignored bot message"})
	case relay.IgnoreNoText:
		if s.strictInbound {
			writeError(w, http.StatusBadRequest, "Invalid message format: No text")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Ignored message without text"})
	case relay.IgnoreNonTeamSender:
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Ignored non-team sender"})
	case relay.IgnoreNonTopic:
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Ignored non-topic message"})
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Ignored"})
	}
}
