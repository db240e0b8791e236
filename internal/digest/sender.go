package digest

import (
	"context"
	"errors"
	"fmt"
)

// Sender delivers a digest to one destination.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Deliver sends msg to every sender. A failing sender does not stop the
// others; all failures are returned together.
func Deliver(ctx context.Context, senders []Sender, msg Message) error {
	var errs []error
	for _, s := range senders {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("digest: send via %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
