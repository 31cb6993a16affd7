package notification

import (
	"errors"
)

type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
)

const (
	TopicAdmin  = "admin"
	TopicSeller = "seller"
	TopicBuyer  = "buyer"
)

const (
	TargetRoleSeller = "seller"
	TargetRoleBuyer  = "buyer"
	TargetRoleAll    = "all"
)

// Error classes. All of them are logged and swallowed at the handler boundary.
var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrMissingData    = errors.New("missing data")
	ErrLookup         = errors.New("lookup failed")
	ErrSend           = errors.New("send failed")
)

type Listing struct {
	Title      string
	SellerName string
	Status     ListingStatus
	UserID     string
}

// ListingEvent is one listing document mutation. Before is nil on create.
type ListingEvent struct {
	ID     string
	Before *Listing
	After  *Listing
}

type Announcement struct {
	Title      string
	Message    string
	TargetRole string
}

type AnnouncementEvent struct {
	ID   string
	Data *Announcement
}

// Recipient is either a topic or a single user's device token.
// A user recipient with an empty Token is kept so it can be reported as skipped.
type Recipient struct {
	Topic  string
	UserID string
	Token  string
}

func TopicRecipient(topic string) Recipient {
	return Recipient{Topic: topic}
}

func (r Recipient) IsTopic() bool {
	return r.Topic != ""
}

func (r Recipient) Deliverable() bool {
	return r.IsTopic() || r.Token != ""
}

func (r Recipient) String() string {
	if r.IsTopic() {
		return "topic:" + r.Topic
	}
	return "user:" + r.UserID
}

type Payload struct {
	Title string
	Body  string
	Data  map[string]string
}

type ErrorInfo struct {
	Message string
	Code    string
}

type Outcome struct {
	Recipient Recipient
	Success   bool
	Skipped   bool
	MessageID string
	Error     *ErrorInfo
}

// Result is what a handler invocation produced. Err is set when the
// invocation stopped before dispatch; it never escapes the handler.
type Result struct {
	Handler  string
	Outcomes []Outcome
	Err      error
}

func (r Result) Sent() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

func (r Result) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Success && !o.Skipped {
			n++
		}
	}
	return n
}

func (r Result) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Skipped {
			n++
		}
	}
	return n
}

// ListingFromData maps a listings document. nil data means the snapshot had no document.
func ListingFromData(data map[string]interface{}) *Listing {
	if data == nil {
		return nil
	}
	return &Listing{
		Title:      stringField(data, "title"),
		SellerName: stringField(data, "sellerName"),
		Status:     ListingStatus(stringField(data, "status")),
		UserID:     stringField(data, "user_id"),
	}
}

func AnnouncementFromData(data map[string]interface{}) *Announcement {
	if data == nil {
		return nil
	}
	return &Announcement{
		Title:      stringField(data, "title"),
		Message:    stringField(data, "message"),
		TargetRole: stringField(data, "targetRole"),
	}
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}
