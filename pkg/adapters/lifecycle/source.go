// Package lifecycle bridges jotter events to github.com/aretw0/lifecycle.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jotter/pkg/core"
)

type eventSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that re-emits the events of a
// workspace or medium watch channel. core.Event implements lifecycle.Event.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &eventSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *eventSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input channel closes,
// then closes the output channel.
func (s *eventSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
