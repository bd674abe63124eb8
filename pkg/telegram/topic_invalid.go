package telegram

import (
	"errors"
	"strings"

	"github.com/mymmrac/telego/telegoapi"
)

// Phrases Telegram uses when a send references a topic that was deleted or
// never existed. String matching is fragile and version-coupled to the Bot
// API; keep the whole vocabulary in one place so a structured error code can
// replace it if Telegram ever exposes one.
var topicInvalidPhrases = []string{
	"TOPIC_DELETED",
	"TOPIC_NOT_FOUND",
	"message thread not found",
	"message_thread_id",
}

// IsTopicInvalid reports whether a send failure means the target topic no
// longer exists. Only a Bot API input rejection (code 400) whose description
// matches the known vocabulary qualifies; anything ambiguous is not a topic
// error, so unrelated failures never get masked by topic recreation.
func IsTopicInvalid(err error) bool {
	var apiErr *telegoapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.ErrorCode != 400 {
		return false
	}
	for _, phrase := range topicInvalidPhrases {
		if strings.Contains(apiErr.Description, phrase) {
			return true
		}
	}
	return false
}
