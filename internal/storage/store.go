package storage

import (
	"context"
	"errors"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

var ErrUserNotFound = errors.New("user not found")

// User is the subset of a users document the notification functions read.
// FCMToken is empty when the device never registered or the field is null.
type User struct {
	ID       string
	Role     Role
	FCMToken string
}

type UserStore interface {
	ListUsersByRole(ctx context.Context, role Role) ([]User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}
