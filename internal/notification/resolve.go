package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/katatrina/smartspace-functions/internal/storage"
	"github.com/rs/zerolog"
)

// resolveAdmins returns every admin as a recipient, including admins without a
// token so their skip shows up in the outcomes.
func (s *NotificationService) resolveAdmins(ctx context.Context, logger zerolog.Logger) ([]Recipient, error) {
	if s.options.AdminDelivery == AdminDeliveryTopic {
		return []Recipient{TopicRecipient(TopicAdmin)}, nil
	}

	admins, err := s.users.ListUsersByRole(ctx, storage.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%w: list admins: %w", ErrLookup, err)
	}

	recipients := make([]Recipient, 0, len(admins))
	for _, admin := range admins {
		if admin.FCMToken == "" {
			logger.Warn().Str("userId", admin.ID).Msg("admin has no fcm token, skipping")
		}
		recipients = append(recipients, Recipient{UserID: admin.ID, Token: admin.FCMToken})
	}

	return recipients, nil
}

// resolveSeller returns the listing owner when the status moved to approved or rejected.
func (s *NotificationService) resolveSeller(ctx context.Context, event ListingEvent, logger zerolog.Logger) ([]Recipient, error) {
	if event.Before.Status == event.After.Status {
		return nil, nil
	}
	if !isFinalStatus(event.After.Status) {
		return nil, nil
	}
	if event.After.UserID == "" {
		return nil, fmt.Errorf("%w: listing has no user_id", ErrMissingData)
	}

	seller, err := s.users.GetUser(ctx, event.After.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: seller %s not found", ErrMissingData, event.After.UserID)
		}
		return nil, fmt.Errorf("%w: get seller: %w", ErrLookup, err)
	}

	if seller.FCMToken == "" {
		logger.Warn().Str("userId", seller.ID).Msg("seller has no fcm token, skipping")
	}

	return []Recipient{{UserID: seller.ID, Token: seller.FCMToken}}, nil
}

func resolveBuyers(event ListingEvent) []Recipient {
	if event.Before.Status != ListingStatusApproved && event.After.Status == ListingStatusApproved {
		return []Recipient{TopicRecipient(TopicBuyer)}
	}
	return nil
}

func resolveAnnouncementSellers(event AnnouncementEvent) []Recipient {
	switch event.Data.TargetRole {
	case TargetRoleSeller, TargetRoleAll:
		return []Recipient{TopicRecipient(TopicSeller)}
	}
	return nil
}

func isFinalStatus(status ListingStatus) bool {
	return status == ListingStatusApproved || status == ListingStatusRejected
}
