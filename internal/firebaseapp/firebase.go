package firebaseapp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/katatrina/smartspace-functions/internal/util"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Clients are created once at startup and passed to every handler.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Messaging *messaging.Client
}

// NewClients initializes the Firebase Admin app with its Firestore and FCM clients.
// Without GOOGLE_APPLICATION_CREDENTIALS the SDK falls back to application default credentials.
func NewClients(ctx context.Context, config util.Config) (*Clients, error) {
	var opts []option.ClientOption
	if config.GoogleApplicationCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(config.GoogleApplicationCredentials))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: config.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase app: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		_ = firestoreClient.Close()
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	log.Info().Str("projectId", config.FirebaseProjectID).Msg("firebase clients initialized ✅")

	return &Clients{
		App:       app,
		Firestore: firestoreClient,
		Messaging: messagingClient,
	}, nil
}

func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
