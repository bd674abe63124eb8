package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeFullFieldOrder(t *testing.T) {
	got := Compose(MessageFields{
		Subject: "Order #1234",
		Body:    "My delivery never arrived.",
		Email:   "jane@example.com",
	})

	subjectAt := strings.Index(got, "**Subject:** Order #1234")
	bodyAt := strings.Index(got, "My delivery never arrived.")
	emailAt := strings.Index(got, "**Email:** jane@example.com")

	assert.GreaterOrEqual(t, subjectAt, 0)
	assert.Greater(t, bodyAt, subjectAt)
	assert.Greater(t, emailAt, bodyAt)
}

func TestComposeDeterministic(t *testing.T) {
	fields := MessageFields{Subject: "S", Body: "M", Email: "e@x.com"}
	assert.Equal(t, Compose(fields), Compose(fields))
}

func TestComposeBodyOnly(t *testing.T) {
	assert.Equal(t, "just the text", Compose(MessageFields{Body: "just the text"}))
}

func TestComposeHandleTrailer(t *testing.T) {
	got := Compose(MessageFields{Body: "hello", ConversationHandle: "bubble-42"})
	assert.Equal(t, "hello\n\n**Bubble Chat ID:** bubble-42", got)
}

func TestComposeEmailWinsOverHandle(t *testing.T) {
	got := Compose(MessageFields{
		Body:               "hello",
		Email:              "e@x.com",
		ConversationHandle: "bubble-42",
	})
	assert.Contains(t, got, "**Email:** e@x.com")
	assert.NotContains(t, got, "Bubble Chat ID")
}

func TestSenderHeader(t *testing.T) {
	assert.Equal(t, "**Customer Message:**\n", senderHeader(""))
	assert.Equal(t, "**Jane Message:**\n", senderHeader("Jane"))
}
