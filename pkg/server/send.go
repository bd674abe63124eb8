package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/topicline/topicline/pkg/logger"
	"github.com/topicline/topicline/pkg/relay"
)

// sendRequest is the CRM-facing body of /api/telegram/send. Both optional
// field sets seen across deployments are accepted: bubble_chat_id/owner and
// subject/email.
type sendRequest struct {
	ChatID       flexInt `json:"chat_id"`
	Message      string  `json:"message"`
	BubbleChatID string  `json:"bubble_chat_id"`
	Owner        string  `json:"owner"`
	Subject      string  `json:"subject"`
	Email        string  `json:"email"`
}

// flexInt decodes a thread ID that CRMs send inconsistently: a JSON number,
// a numeric string, an empty string, or null. Empty and null mean "no topic
// yet".
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("chat_id is not a number")
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("chat_id is not a number")
	}
	*f = flexInt(n)
	return nil
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	logger.InfoCF(component, "Send request", map[string]interface{}{
		"chat_id":        int(req.ChatID),
		"bubble_chat_id": req.BubbleChatID,
		"owner":          req.Owner,
	})

	result, err := s.orchestrator.Deliver(r.Context(), relay.OutboundRequest{
		ThreadID:           int(req.ChatID),
		Message:            req.Message,
		ConversationHandle: req.BubbleChatID,
		Subject:            req.Subject,
		Email:              req.Email,
		SenderLabel:        req.Owner,
	})
	if err != nil {
		switch {
		case errors.Is(err, relay.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "Missing required field: message")
		case errors.Is(err, relay.ErrNoTopicHandle):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logger.ErrorCF(component, "Delivery failed", map[string]interface{}{
				"error": err.Error(),
			})
			writeErrorDetails(w, http.StatusInternalServerError,
				"Failed to send message to Telegram", err.Error())
		}
		return
	}

	resp := map[string]interface{}{
		"success":   true,
		"chat_id":   result.ThreadID,
		"messageId": result.MessageID,
	}
	if result.TopicCreated {
		resp["topicCreated"] = true
	}
	if result.TopicRecreated {
		resp["topicRecreated"] = true
	}
	writeJSON(w, http.StatusOK, resp)
}
