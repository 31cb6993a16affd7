package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"github.com/katatrina/smartspace-functions/internal/event"
	"github.com/katatrina/smartspace-functions/internal/notification"
	"github.com/rs/zerolog"
)

// Trigger endpoints always acknowledge with 204. A non-2xx answer would make
// Eventarc redeliver, and notifications are best effort.

func (server *Server) onListingCreated(ctx *gin.Context) {
	listingEvent, ok := server.decodeListingEvent(ctx)
	if ok {
		server.handlers.NotifyAdminOnNewListing(ctx.Request.Context(), listingEvent)
	}
	ctx.Status(http.StatusNoContent)
}

// onListingUpdated runs both update handlers for one event. Each of them
// swallows its own failures, so one never prevents the other.
func (server *Server) onListingUpdated(ctx *gin.Context) {
	listingEvent, ok := server.decodeListingEvent(ctx)
	if ok {
		server.handlers.NotifySellerOnStatusChange(ctx.Request.Context(), listingEvent)
		server.handlers.NotifyBuyersOnApprovedListing(ctx.Request.Context(), listingEvent)
	}
	ctx.Status(http.StatusNoContent)
}

func (server *Server) onAnnouncementCreated(ctx *gin.Context) {
	data, ok := server.decodeDocumentEvent(ctx)
	if ok {
		fields, err := event.Fields(data.GetValue())
		if err != nil {
			zerolog.Ctx(ctx.Request.Context()).Error().Err(err).Msg("failed to decode announcement document")
		} else {
			announcementEvent := notification.AnnouncementEvent{
				ID:   event.DocumentID(data, ctx.GetHeader(cloudEventSubjectHeader)),
				Data: notification.AnnouncementFromData(fields),
			}
			server.handlers.NotifySellersOnAnnouncement(ctx.Request.Context(), announcementEvent)
		}
	}
	ctx.Status(http.StatusNoContent)
}

func (server *Server) decodeDocumentEvent(ctx *gin.Context) (*firestoredata.DocumentEventData, bool) {
	logger := zerolog.Ctx(ctx.Request.Context())

	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, server.maxBodyBytes()))
	if err != nil {
		logger.Error().Err(err).Msg("failed to read trigger body")
		return nil, false
	}

	data, err := event.Decode(ctx.ContentType(), body)
	if err != nil {
		logger.Error().Err(err).Str("contentType", ctx.ContentType()).Msg("failed to decode trigger payload")
		return nil, false
	}

	return data, true
}

func (server *Server) decodeListingEvent(ctx *gin.Context) (notification.ListingEvent, bool) {
	logger := zerolog.Ctx(ctx.Request.Context())

	data, ok := server.decodeDocumentEvent(ctx)
	if !ok {
		return notification.ListingEvent{}, false
	}

	listingEvent := notification.ListingEvent{
		ID: event.DocumentID(data, ctx.GetHeader(cloudEventSubjectHeader)),
	}

	before, err := event.Fields(data.GetOldValue())
	if err != nil {
		logger.Error().Err(err).Str("listingId", listingEvent.ID).Msg("failed to decode listing before snapshot")
		return notification.ListingEvent{}, false
	}
	after, err := event.Fields(data.GetValue())
	if err != nil {
		logger.Error().Err(err).Str("listingId", listingEvent.ID).Msg("failed to decode listing after snapshot")
		return notification.ListingEvent{}, false
	}

	listingEvent.Before = notification.ListingFromData(before)
	listingEvent.After = notification.ListingFromData(after)
	return listingEvent, true
}
