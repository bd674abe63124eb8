package relay

import "strings"

// MessageFields are the pieces a composed outbound message is built from.
// Deployments differ in which optional fields their CRM sends: some use
// Subject/Email, some only the conversation handle. Compose handles both.
type MessageFields struct {
	Subject            string
	Body               string
	Email              string
	ConversationHandle string
}

// Compose builds the message body posted into a topic: an optional subject
// paragraph, the body, and an optional contact/correlation paragraph, in
// that order. Deterministic, no truncation.
func Compose(f MessageFields) string {
	var b strings.Builder
	if f.Subject != "" {
		b.WriteString("**Subject:** ")
		b.WriteString(f.Subject)
		b.WriteString("\n\n")
	}
	b.WriteString(f.Body)
	switch {
	case f.Email != "":
		b.WriteString("\n\n**Email:** ")
		b.WriteString(f.Email)
	case f.ConversationHandle != "":
		b.WriteString("\n\n**Bubble Chat ID:** ")
		b.WriteString(f.ConversationHandle)
	}
	return b.String()
}

// senderHeader labels who wrote the message inside the topic.
func senderHeader(label string) string {
	if label == "" {
		label = "Customer"
	}
	return "**" + label + " Message:**\n"
}
