package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreUserStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreUserStore(client *firestore.Client, collection string) *FirestoreUserStore {
	return &FirestoreUserStore{
		client:     client,
		collection: collection,
	}
}

func (s *FirestoreUserStore) ListUsersByRole(ctx context.Context, role Role) ([]User, error) {
	iter := s.client.Collection(s.collection).Where("role", "==", string(role)).Documents(ctx)
	defer iter.Stop()

	var users []User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query users by role %s: %w", role, err)
		}

		users = append(users, userFromData(doc.Ref.ID, doc.Data()))
	}

	return users, nil
}

func (s *FirestoreUserStore) GetUser(ctx context.Context, userID string) (*User, error) {
	snap, err := s.client.Collection(s.collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if !snap.Exists() {
		return nil, ErrUserNotFound
	}

	user := userFromData(snap.Ref.ID, snap.Data())
	return &user, nil
}

func userFromData(id string, data map[string]interface{}) User {
	user := User{ID: id}
	if role, ok := data["role"].(string); ok {
		user.Role = Role(role)
	}
	// fcmToken is written as null on logout
	if token, ok := data["fcmToken"].(string); ok {
		user.FCMToken = token
	}
	return user
}
