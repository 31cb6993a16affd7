package notification

import (
	"context"
	"fmt"

	"github.com/katatrina/smartspace-functions/internal/util"
	"github.com/rs/zerolog"
)

const (
	HandlerNotifyAdminOnNewListing       = "notifyAdminOnNewListing"
	HandlerNotifySellerOnStatusChange    = "notifySellerOnStatusChange"
	HandlerNotifyBuyersOnApprovedListing = "notifyBuyersOnApprovedListing"
	HandlerNotifySellersOnAnnouncement   = "notifySellersOnAnnouncement"
)

// NotifyAdminOnNewListing tells every admin that a seller submitted a listing.
func (s *NotificationService) NotifyAdminOnNewListing(ctx context.Context, event ListingEvent) Result {
	logger := s.handlerLogger(ctx, HandlerNotifyAdminOnNewListing).With().Str("listingId", event.ID).Logger()

	result := s.notifyAdminOnNewListing(ctx, event, logger)
	result.Handler = HandlerNotifyAdminOnNewListing
	s.report(logger, result)
	return result
}

func (s *NotificationService) notifyAdminOnNewListing(ctx context.Context, event ListingEvent, logger zerolog.Logger) Result {
	if event.After == nil {
		return Result{Err: fmt.Errorf("%w: created listing has no data", ErrMalformedEvent)}
	}

	recipients, err := s.resolveAdmins(ctx, logger)
	if err != nil {
		return Result{Err: err}
	}

	body := "A seller submitted a new listing."
	if event.After.SellerName != "" {
		body = fmt.Sprintf("Seller %s submitted a new listing.", event.After.SellerName)
	}

	payload := Payload{
		Title: "New listing has been submitted",
		Body:  body,
		Data:  listingData("new_listing", event.ID),
	}

	return Result{Outcomes: s.dispatcher.Dispatch(ctx, recipients, payload)}
}

// NotifySellerOnStatusChange tells the listing owner it was approved or rejected.
func (s *NotificationService) NotifySellerOnStatusChange(ctx context.Context, event ListingEvent) Result {
	logger := s.handlerLogger(ctx, HandlerNotifySellerOnStatusChange).With().Str("listingId", event.ID).Logger()

	result := s.notifySellerOnStatusChange(ctx, event, logger)
	result.Handler = HandlerNotifySellerOnStatusChange
	s.report(logger, result)
	return result
}

func (s *NotificationService) notifySellerOnStatusChange(ctx context.Context, event ListingEvent, logger zerolog.Logger) Result {
	if event.Before == nil || event.After == nil {
		return Result{Err: fmt.Errorf("%w: updated listing is missing a snapshot", ErrMalformedEvent)}
	}

	recipients, err := s.resolveSeller(ctx, event, logger)
	if err != nil {
		return Result{Err: err}
	}
	if len(recipients) == 0 {
		return Result{}
	}

	payload := Payload{
		Title: "Listing Status Updated",
		Body:  fmt.Sprintf(`Your listing "%s" has been %s.`, s.title(event.After.Title), event.After.Status),
		Data:  listingData("listing_status", event.ID),
	}
	payload.Data["status"] = string(event.After.Status)

	return Result{Outcomes: s.dispatcher.Dispatch(ctx, recipients, payload)}
}

// NotifyBuyersOnApprovedListing broadcasts a newly approved listing to the buyer topic.
func (s *NotificationService) NotifyBuyersOnApprovedListing(ctx context.Context, event ListingEvent) Result {
	logger := s.handlerLogger(ctx, HandlerNotifyBuyersOnApprovedListing).With().Str("listingId", event.ID).Logger()

	result := s.notifyBuyersOnApprovedListing(ctx, event)
	result.Handler = HandlerNotifyBuyersOnApprovedListing
	s.report(logger, result)
	return result
}

func (s *NotificationService) notifyBuyersOnApprovedListing(ctx context.Context, event ListingEvent) Result {
	if event.Before == nil || event.After == nil {
		return Result{Err: fmt.Errorf("%w: updated listing is missing a snapshot", ErrMalformedEvent)}
	}

	recipients := resolveBuyers(event)
	if len(recipients) == 0 {
		return Result{}
	}

	payload := Payload{
		Title: "New Property Available!",
		Body:  fmt.Sprintf(`A new listing "%s" is now live. Check it out.`, s.title(event.After.Title)),
		Data:  listingData("listing_approved", event.ID),
	}

	return Result{Outcomes: s.dispatcher.Dispatch(ctx, recipients, payload)}
}

// NotifySellersOnAnnouncement broadcasts announcements aimed at sellers.
func (s *NotificationService) NotifySellersOnAnnouncement(ctx context.Context, event AnnouncementEvent) Result {
	logger := s.handlerLogger(ctx, HandlerNotifySellersOnAnnouncement).With().Str("announcementId", event.ID).Logger()

	result := s.notifySellersOnAnnouncement(ctx, event)
	result.Handler = HandlerNotifySellersOnAnnouncement
	s.report(logger, result)
	return result
}

func (s *NotificationService) notifySellersOnAnnouncement(ctx context.Context, event AnnouncementEvent) Result {
	if event.Data == nil {
		return Result{Err: fmt.Errorf("%w: created announcement has no data", ErrMalformedEvent)}
	}

	recipients := resolveAnnouncementSellers(event)
	if len(recipients) == 0 {
		return Result{}
	}
	if event.Data.Message == "" {
		return Result{Err: fmt.Errorf("%w: announcement has no message", ErrMissingData)}
	}

	title := event.Data.Title
	if title == "" {
		title = "New announcement"
	}

	payload := Payload{
		Title: title,
		Body:  event.Data.Message,
		Data: map[string]string{
			"type":           "announcement",
			"announcementId": event.ID,
		},
	}

	return Result{Outcomes: s.dispatcher.Dispatch(ctx, recipients, payload)}
}

func (s *NotificationService) title(title string) string {
	return util.TruncateContent(title, s.options.TitleMaxLength)
}

func listingData(kind, listingID string) map[string]string {
	return map[string]string{
		"type":      kind,
		"listingId": listingID,
	}
}
