package relay

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage rejects a request without message text before any remote
// call is made.
var ErrEmptyMessage = errors.New("missing required field: message")

// ErrNoTopicHandle means a topic had to be created but the request carried
// no conversation handle to title it with. The wording matches what CRM-side
// workflows already key on.
var ErrNoTopicHandle = errors.New("chat_id is 0 and bubble_chat_id not provided for new topic creation")

// DeliveryError wraps an unrecoverable messaging-platform failure. It is
// never produced for topic-invalid send failures, those take the
// recreate-and-resend path instead.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed during %s: %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ForwardingError wraps a CRM delivery failure on the inbound path.
type ForwardingError struct {
	Err error
}

func (e *ForwardingError) Error() string {
	return fmt.Sprintf("failed to forward reply to CRM: %v", e.Err)
}

func (e *ForwardingError) Unwrap() error { return e.Err }
