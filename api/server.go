package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/smartspace-functions/internal/notification"
	"github.com/katatrina/smartspace-functions/internal/util"
	"github.com/rs/zerolog"
)

// NotificationHandlers is implemented by *notification.NotificationService.
type NotificationHandlers interface {
	NotifyAdminOnNewListing(ctx context.Context, event notification.ListingEvent) notification.Result
	NotifySellerOnStatusChange(ctx context.Context, event notification.ListingEvent) notification.Result
	NotifyBuyersOnApprovedListing(ctx context.Context, event notification.ListingEvent) notification.Result
	NotifySellersOnAnnouncement(ctx context.Context, event notification.AnnouncementEvent) notification.Result
}

// defaultMaxBodyBytes covers a 1 MiB Firestore document in both snapshots of an update.
const defaultMaxBodyBytes int64 = 3 << 20

type Server struct {
	router   *gin.Engine
	handlers NotificationHandlers
	config   util.Config
	logger   zerolog.Logger
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(handlers NotificationHandlers, config util.Config, logger zerolog.Logger) *Server {
	server := &Server{
		handlers: handlers,
		config:   config,
		logger:   logger,
	}

	server.setupRouter()
	return server
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(server.logger))
	router.Use(recoverer(http.StatusInternalServerError))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// A panicking trigger is still acknowledged so Eventarc does not redeliver it
	triggerGroup := router.Group("/v1/triggers", recoverer(http.StatusNoContent))
	{
		triggerGroup.POST("/listings/created", server.onListingCreated)
		triggerGroup.POST("/listings/updated", server.onListingUpdated)
		triggerGroup.POST("/announcements/created", server.onAnnouncementCreated)
	}

	server.router = router
	return router
}

func (server *Server) maxBodyBytes() int64 {
	if server.config.MaxRequestBodyBytes > 0 {
		return server.config.MaxRequestBodyBytes
	}
	return defaultMaxBodyBytes
}

// Handler exposes the router, mainly for tests.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}
