package notification

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// FCM error codes as reported by the Admin SDK.
const (
	CodeUnregistered     = "messaging/registration-token-not-registered"
	CodeInvalidArgument  = "messaging/invalid-argument"
	CodeQuotaExceeded    = "messaging/quota-exceeded"
	CodeSenderIDMismatch = "messaging/mismatched-credential"
	CodeThirdPartyAuth   = "messaging/third-party-auth-error"
	CodeUnavailable      = "messaging/server-unavailable"
	CodeInternal         = "messaging/internal-error"
	CodeUnknown          = "messaging/unknown-error"
)

// MessagingClient is the part of *messaging.Client used for sending.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMSender struct {
	client MessagingClient
}

func NewFCMSender(client MessagingClient) *FCMSender {
	return &FCMSender{
		client: client,
	}
}

func (s *FCMSender) Send(ctx context.Context, recipient Recipient, payload Payload) (string, error) {
	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}
	if recipient.IsTopic() {
		message.Topic = recipient.Topic
	} else {
		message.Token = recipient.Token
	}

	messageID, err := s.client.Send(ctx, message)
	if err != nil {
		return "", &SendError{code: fcmErrorCode(err), err: err}
	}

	return messageID, nil
}

// SendError is a rejected FCM send. It matches ErrSend and the SDK error.
type SendError struct {
	code string
	err  error
}

func (e *SendError) Error() string {
	return e.err.Error()
}

func (e *SendError) Code() string {
	return e.code
}

func (e *SendError) Unwrap() []error {
	return []error{ErrSend, e.err}
}

// fcmErrorCode must see the SDK error itself, the predicates do not unwrap.
func fcmErrorCode(err error) string {
	switch {
	case messaging.IsUnregistered(err):
		return CodeUnregistered
	case messaging.IsInvalidArgument(err):
		return CodeInvalidArgument
	case messaging.IsQuotaExceeded(err):
		return CodeQuotaExceeded
	case messaging.IsSenderIDMismatch(err):
		return CodeSenderIDMismatch
	case messaging.IsThirdPartyAuthError(err):
		return CodeThirdPartyAuth
	case messaging.IsUnavailable(err):
		return CodeUnavailable
	case messaging.IsInternal(err):
		return CodeInternal
	}
	return CodeUnknown
}
