package notification

import (
	"context"
	"errors"
	"fmt"

	conciter "github.com/sourcegraph/conc/iter"
)

type Sender interface {
	Send(ctx context.Context, recipient Recipient, payload Payload) (messageID string, err error)
}

// Dispatcher fans one payload out to a set of recipients.
type Dispatcher struct {
	sender         Sender
	maxConcurrency int
}

// NewDispatcher creates a dispatcher. maxConcurrency <= 0 issues every send at once.
func NewDispatcher(sender Sender, maxConcurrency int) *Dispatcher {
	return &Dispatcher{
		sender:         sender,
		maxConcurrency: maxConcurrency,
	}
}

// Dispatch sends payload to every recipient and waits for all of them.
// Outcomes are in recipient order; a failed send never stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []Recipient, payload Payload) []Outcome {
	if len(recipients) == 0 {
		return nil
	}

	// Issued sends run to completion even if the trigger request goes away
	sendCtx := context.WithoutCancel(ctx)

	limit := len(recipients)
	if d.maxConcurrency > 0 && d.maxConcurrency < limit {
		limit = d.maxConcurrency
	}

	mapper := conciter.Mapper[Recipient, Outcome]{MaxGoroutines: limit}
	return mapper.Map(recipients, func(recipient *Recipient) Outcome {
		return d.dispatchOne(sendCtx, *recipient, payload)
	})
}

func (d *Dispatcher) dispatchOne(ctx context.Context, recipient Recipient, payload Payload) (outcome Outcome) {
	outcome.Recipient = recipient

	if !recipient.Deliverable() {
		outcome.Skipped = true
		return outcome
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Error = &ErrorInfo{Message: fmt.Sprintf("panic during send: %v", r), Code: CodeUnknown}
		}
	}()

	messageID, err := d.sender.Send(ctx, recipient, payload)
	if err != nil {
		outcome.Error = errorInfo(err)
		return outcome
	}

	outcome.Success = true
	outcome.MessageID = messageID
	return outcome
}

func errorInfo(err error) *ErrorInfo {
	info := &ErrorInfo{Message: err.Error(), Code: CodeUnknown}

	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		info.Code = coded.Code()
	}

	return info
}
