package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/smartspace-functions/api"
	"github.com/katatrina/smartspace-functions/internal/firebaseapp"
	"github.com/katatrina/smartspace-functions/internal/notification"
	"github.com/katatrina/smartspace-functions/internal/storage"
	"github.com/katatrina/smartspace-functions/internal/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	if config.LogFormat == util.LogFormatJSON {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Msg("configurations loaded successfully ✅")

	clients, err := firebaseapp.NewClients(context.Background(), config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase 😣")
	}

	userStore := storage.NewFirestoreUserStore(clients.Firestore, config.UsersCollection)
	sender := notification.NewFCMSender(clients.Messaging)

	notificationService := notification.NewNotificationService(userStore, sender, notification.Options{
		AdminDelivery:      notification.AdminDelivery(config.AdminDeliveryMode),
		TitleMaxLength:     config.TitleMaxLength,
		MaxConcurrentSends: config.MaxConcurrentSends,
	}, log.Logger)
	log.Info().Str("adminDelivery", config.AdminDeliveryMode).Msg("notification service created successfully ✅")

	err = runHTTPServer(config, notificationService)

	// log.Fatal exits without running deferred calls
	if closeErr := clients.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to close firestore client")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
	}
}

func runHTTPServer(config util.Config, handlers api.NotificationHandlers) error {
	server := api.NewServer(handlers, config, log.Logger)

	log.Info().Str("address", config.HTTPServerAddress).Msg("starting trigger server 🚀")
	return server.Start(config.HTTPServerAddress)
}
