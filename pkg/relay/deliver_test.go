package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTopicGone = errors.New("Bad Request: message thread not found")

func isTopicGone(err error) bool { return errors.Is(err, errTopicGone) }

type sendCall struct {
	threadID int
	text     string
}

// mockSender is a test double implementing TopicSender.
type mockSender struct {
	sends    []sendCall
	creates  []string
	sendErrs map[int]error // error per send-call index
	createID int
	createErr error
}

func (m *mockSender) SendToTopic(_ context.Context, threadID int, text string) (int, error) {
	idx := len(m.sends)
	m.sends = append(m.sends, sendCall{threadID: threadID, text: text})
	if err := m.sendErrs[idx]; err != nil {
		return 0, err
	}
	return 100 + idx, nil
}

func (m *mockSender) CreateTopic(_ context.Context, title string) (int, error) {
	m.creates = append(m.creates, title)
	if m.createErr != nil {
		return 0, m.createErr
	}
	return m.createID, nil
}

func TestDeliverDirectSend(t *testing.T) {
	sender := &mockSender{}
	o := NewOrchestrator(sender, isTopicGone)

	result, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID: 42,
		Message:  "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, 42, result.ThreadID)
	assert.Equal(t, 100, result.MessageID)
	assert.False(t, result.TopicCreated)
	assert.False(t, result.TopicRecreated)
	assert.Len(t, sender.sends, 1)
	assert.Empty(t, sender.creates)
}

func TestDeliverEmptyMessage(t *testing.T) {
	sender := &mockSender{}
	o := NewOrchestrator(sender, isTopicGone)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := o.Deliver(context.Background(), OutboundRequest{ThreadID: 42, Message: msg})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Empty(t, sender.sends, "validation must short-circuit before any remote call")
	assert.Empty(t, sender.creates)
}

func TestDeliverSentinelCreatesTopic(t *testing.T) {
	sender := &mockSender{createID: 77}
	o := NewOrchestrator(sender, isTopicGone)

	result, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID:           NoTopic,
		Message:            "first contact",
		ConversationHandle: "bubble-123",
	})
	require.NoError(t, err)

	assert.Equal(t, 77, result.ThreadID)
	assert.True(t, result.TopicCreated)
	assert.False(t, result.TopicRecreated)
	require.Len(t, sender.creates, 1)
	assert.Equal(t, "bubble-123", sender.creates[0])
	require.Len(t, sender.sends, 1)
	assert.Equal(t, 77, sender.sends[0].threadID)
}

func TestDeliverSentinelWithoutHandle(t *testing.T) {
	sender := &mockSender{}
	o := NewOrchestrator(sender, isTopicGone)

	_, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID: NoTopic,
		Message:  "no home for this",
	})
	assert.ErrorIs(t, err, ErrNoTopicHandle)
	assert.Empty(t, sender.sends, "no remote calls without creation metadata")
	assert.Empty(t, sender.creates)
}

func TestDeliverSelfHealsDeletedTopic(t *testing.T) {
	sender := &mockSender{
		createID: 88,
		sendErrs: map[int]error{0: errTopicGone},
	}
	o := NewOrchestrator(sender, isTopicGone)

	result, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID:           42,
		Message:            "hello again",
		ConversationHandle: "bubble-456",
	})
	require.NoError(t, err)

	assert.Equal(t, 88, result.ThreadID)
	assert.True(t, result.TopicCreated)
	assert.True(t, result.TopicRecreated)
	require.Len(t, sender.creates, 1)
	require.Len(t, sender.sends, 2)
	assert.Equal(t, 42, sender.sends[0].threadID)
	assert.Equal(t, 88, sender.sends[1].threadID)
	assert.Equal(t, sender.sends[0].text, sender.sends[1].text, "resend carries the identical composed message")
}

func TestDeliverSelfHealWithoutHandle(t *testing.T) {
	sender := &mockSender{sendErrs: map[int]error{0: errTopicGone}}
	o := NewOrchestrator(sender, isTopicGone)

	_, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID: 42,
		Message:  "hello",
	})
	assert.ErrorIs(t, err, ErrNoTopicHandle)
	assert.Empty(t, sender.creates)
}

func TestDeliverUnrelatedSendFailure(t *testing.T) {
	boom := errors.New("Too Many Requests: retry after 30")
	sender := &mockSender{sendErrs: map[int]error{0: boom}}
	o := NewOrchestrator(sender, isTopicGone)

	_, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID:           42,
		Message:            "hello",
		ConversationHandle: "bubble-789",
	})

	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sender.creates, "non-topic errors must not trigger recreation")
	assert.Len(t, sender.sends, 1)
}

func TestDeliverCreateFailure(t *testing.T) {
	boom := errors.New("not enough rights to create a topic")
	sender := &mockSender{createErr: boom}
	o := NewOrchestrator(sender, isTopicGone)

	_, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID:           NoTopic,
		Message:            "hello",
		ConversationHandle: "bubble-1",
	})

	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.Empty(t, sender.sends)
}

func TestDeliverNewTopicSendFailureIsTerminal(t *testing.T) {
	// The send into a freshly created topic fails with a topic error:
	// the orchestrator must not loop into a second creation.
	sender := &mockSender{
		createID: 99,
		sendErrs: map[int]error{0: errTopicGone, 1: errTopicGone},
	}
	o := NewOrchestrator(sender, isTopicGone)

	_, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID:           42,
		Message:            "hello",
		ConversationHandle: "bubble-2",
	})

	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.Len(t, sender.creates, 1, "at most one creation attempt per request")
	assert.Len(t, sender.sends, 2, "at most three remote calls per request")
}

func TestDeliverComposedText(t *testing.T) {
	sender := &mockSender{}
	o := NewOrchestrator(sender, isTopicGone)

	_, err := o.Deliver(context.Background(), OutboundRequest{
		ThreadID:           5,
		Message:            "Need help with my order",
		ConversationHandle: "bubble-321",
		SenderLabel:        "Jane",
	})
	require.NoError(t, err)

	require.Len(t, sender.sends, 1)
	assert.Equal(t,
		"**Jane Message:**\nNeed help with my order\n\n**Bubble Chat ID:** bubble-321",
		sender.sends[0].text)
}
