package notification

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_EmptyRecipients(t *testing.T) {
	sender := &fakeSender{}
	outcomes := NewDispatcher(sender, 0).Dispatch(context.Background(), nil, Payload{Title: "t"})

	assert.Nil(t, outcomes)
	assert.Empty(t, sender.messages())
}

type panicSender struct{}

func (panicSender) Send(context.Context, Recipient, Payload) (string, error) {
	panic("nil client")
}

func TestDispatcher_PanicBecomesFailedOutcome(t *testing.T) {
	recipients := []Recipient{{UserID: "a1", Token: "tok-a1"}, {UserID: "a2", Token: "tok-a2"}}

	outcomes := NewDispatcher(panicSender{}, 0).Dispatch(context.Background(), recipients, Payload{})

	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.False(t, outcome.Success)
		require.NotNil(t, outcome.Error)
		assert.Contains(t, outcome.Error.Message, "nil client")
	}
}

type countingSender struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (s *countingSender) Send(context.Context, Recipient, Payload) (string, error) {
	n := s.inFlight.Add(1)
	for {
		peak := s.maxInFlight.Load()
		if n <= peak || s.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(50 * time.Millisecond)
	s.inFlight.Add(-1)
	return "id", nil
}

func TestDispatcher_MaxConcurrency(t *testing.T) {
	recipients := make([]Recipient, 6)
	for i := range recipients {
		recipients[i] = Recipient{UserID: "u", Token: "tok"}
	}

	sender := &countingSender{}
	outcomes := NewDispatcher(sender, 2).Dispatch(context.Background(), recipients, Payload{})

	assert.Len(t, outcomes, 6)
	assert.LessOrEqual(t, sender.maxInFlight.Load(), int32(2))
}

func TestDispatcher_SendsEvenIfRequestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawCancelled atomic.Bool
	sender := senderFunc(func(ctx context.Context, _ Recipient, _ Payload) (string, error) {
		sawCancelled.Store(ctx.Err() != nil)
		return "id", nil
	})

	outcomes := NewDispatcher(sender, 0).Dispatch(ctx, []Recipient{TopicRecipient(TopicBuyer)}, Payload{})

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success)
	assert.False(t, sawCancelled.Load())
}

type senderFunc func(ctx context.Context, recipient Recipient, payload Payload) (string, error)

func (f senderFunc) Send(ctx context.Context, recipient Recipient, payload Payload) (string, error) {
	return f(ctx, recipient, payload)
}

// ==========================
// FCMSender
// ==========================

type fakeMessagingClient struct {
	messages []*messaging.Message
	err      error
}

func (f *fakeMessagingClient) Send(_ context.Context, message *messaging.Message) (string, error) {
	f.messages = append(f.messages, message)
	if f.err != nil {
		return "", f.err
	}
	return "projects/smartspace/messages/1", nil
}

func TestFCMSender_Send(t *testing.T) {
	payload := Payload{
		Title: "Listing Status Updated",
		Body:  `Your listing "Flat A" has been approved.`,
		Data:  map[string]string{"listingId": "L1"},
	}

	tests := []struct {
		name      string
		recipient Recipient
		wantToken string
		wantTopic string
	}{
		{name: "token", recipient: Recipient{UserID: "u1", Token: "tok1"}, wantToken: "tok1"},
		{name: "topic", recipient: TopicRecipient(TopicBuyer), wantTopic: TopicBuyer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeMessagingClient{}

			id, err := NewFCMSender(client).Send(context.Background(), tt.recipient, payload)
			require.NoError(t, err)
			assert.Equal(t, "projects/smartspace/messages/1", id)

			require.Len(t, client.messages, 1)
			message := client.messages[0]
			assert.Equal(t, tt.wantToken, message.Token)
			assert.Equal(t, tt.wantTopic, message.Topic)
			require.NotNil(t, message.Notification)
			assert.Equal(t, payload.Title, message.Notification.Title)
			assert.Equal(t, payload.Body, message.Notification.Body)
			assert.Equal(t, payload.Data, message.Data)
		})
	}
}

func TestFCMSender_SendError(t *testing.T) {
	sdkErr := errors.New("http error status: 503")
	client := &fakeMessagingClient{err: sdkErr}

	_, err := NewFCMSender(client).Send(context.Background(), Recipient{UserID: "u1", Token: "tok1"}, Payload{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSend)
	assert.ErrorIs(t, err, sdkErr)

	info := errorInfo(err)
	assert.Equal(t, CodeUnknown, info.Code)
	assert.Equal(t, "http error status: 503", info.Message)
}

func TestRecipient(t *testing.T) {
	assert.Equal(t, "topic:buyer", TopicRecipient(TopicBuyer).String())
	assert.Equal(t, "user:u1", Recipient{UserID: "u1"}.String())
	assert.True(t, TopicRecipient(TopicSeller).Deliverable())
	assert.False(t, Recipient{UserID: "u1"}.Deliverable())
	assert.True(t, Recipient{UserID: "u1", Token: "tok"}.Deliverable())
}
