package notification

import (
	"context"
	"errors"

	"github.com/katatrina/smartspace-functions/internal/storage"
	"github.com/rs/zerolog"
)

type AdminDelivery string

const (
	// AdminDeliveryTokens sends to each admin's device token.
	AdminDeliveryTokens AdminDelivery = "token"
	// AdminDeliveryTopic broadcasts to the "admin" topic without reading users.
	AdminDeliveryTopic AdminDelivery = "topic"
)

type Options struct {
	AdminDelivery  AdminDelivery
	TitleMaxLength int
	// MaxConcurrentSends caps in-flight FCM sends per handler. Zero issues them all at once.
	MaxConcurrentSends int
}

// NotificationService holds the handlers for listing and announcement triggers.
// It is built once per process and shared by all invocations.
type NotificationService struct {
	users      storage.UserStore
	dispatcher *Dispatcher
	options    Options
	logger     zerolog.Logger
}

func NewNotificationService(users storage.UserStore, sender Sender, options Options, logger zerolog.Logger) *NotificationService {
	if options.AdminDelivery == "" {
		options.AdminDelivery = AdminDeliveryTokens
	}

	return &NotificationService{
		users:      users,
		dispatcher: NewDispatcher(sender, options.MaxConcurrentSends),
		options:    options,
		logger:     logger,
	}
}

// handlerLogger prefers the request-scoped logger stored in ctx.
func (s *NotificationService) handlerLogger(ctx context.Context, handler string) zerolog.Logger {
	base := s.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = *l
	}
	return base.With().Str("handler", handler).Logger()
}

// report is the handler boundary: every failure ends here as a log line.
func (s *NotificationService) report(logger zerolog.Logger, result Result) {
	if result.Err != nil {
		if errors.Is(result.Err, ErrMissingData) {
			logger.Warn().Err(result.Err).Msg("notification not sent")
		} else {
			logger.Error().Err(result.Err).Msg("notification handler failed")
		}
		return
	}

	if len(result.Outcomes) == 0 {
		logger.Debug().Msg("nothing to notify")
		return
	}

	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Success:
			logger.Info().
				Str("recipient", outcome.Recipient.String()).
				Str("messageId", outcome.MessageID).
				Msg("notification sent")
		case outcome.Skipped:
			logger.Info().
				Str("recipient", outcome.Recipient.String()).
				Msg("notification skipped")
		default:
			logger.Error().
				Str("recipient", outcome.Recipient.String()).
				Str("code", outcome.Error.Code).
				Str("error", outcome.Error.Message).
				Msg("failed to send notification")
		}
	}

	logger.Info().
		Int("sent", result.Sent()).
		Int("failed", result.Failed()).
		Int("skipped", result.Skipped()).
		Msg("notifications dispatched")
}
