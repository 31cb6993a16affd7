package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/katatrina/smartspace-functions/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeUserStore struct {
	users   []storage.User
	listErr error
	getErr  error

	mu        sync.Mutex
	listCalls int
	getCalls  int
}

func (f *fakeUserStore) ListUsersByRole(_ context.Context, role storage.Role) ([]storage.User, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []storage.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) GetUser(_ context.Context, userID string) (*storage.User, error) {
	f.mu.Lock()
	f.getCalls++
	f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.ID == userID {
			user := u
			return &user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

type sentMessage struct {
	Recipient Recipient
	Payload   Payload
}

type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

type fakeSender struct {
	// failures maps a token or topic to the error its send returns
	failures map[string]error
	// delays maps a token or topic to how long its send blocks
	delays map[string]time.Duration

	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) Send(_ context.Context, recipient Recipient, payload Payload) (string, error) {
	key := recipient.Token
	if recipient.IsTopic() {
		key = recipient.Topic
	}

	if d, ok := f.delays[key]; ok {
		time.Sleep(d)
	}

	f.mu.Lock()
	f.sent = append(f.sent, sentMessage{Recipient: recipient, Payload: payload})
	f.mu.Unlock()

	if err, ok := f.failures[key]; ok {
		return "", err
	}
	return "projects/smartspace/messages/" + key, nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) entries(t *testing.T) []map[string]interface{} {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(c.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), fmt.Sprintf("log line %q", line))
		entries = append(entries, entry)
	}
	return entries
}

func (c *logCapture) count(t *testing.T, level, message string) int {
	n := 0
	for _, entry := range c.entries(t) {
		if entry["level"] == level && entry["message"] == message {
			n++
		}
	}
	return n
}

func newTestService(users *fakeUserStore, sender *fakeSender, options Options) (*NotificationService, *logCapture) {
	capture := &logCapture{}
	logger := zerolog.New(capture).Level(zerolog.DebugLevel)
	return NewNotificationService(users, sender, options, logger), capture
}

func listingEvent(before, after *Listing) ListingEvent {
	return ListingEvent{ID: "L1", Before: before, After: after}
}
