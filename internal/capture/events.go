package capture

import (
	"errors"
	"time"

	"github.com/alkime/practicum/pkg/channels"
)

// Event records a single state transition.
type Event struct {
	From State
	To   State
	At   time.Time
	Err  error
}

type subscriber struct {
	ch      chan<- Event
	dropped int
}

// Subscribe registers ch to receive state transitions. Delivery is
// non-blocking: a full channel drops the event. The returned func removes
// the subscription; it does not close ch.
func (s *Session) Subscribe(ch chan<- Event) (func(), error) {
	if ch == nil {
		return nil, errors.New("event channel cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscriber{ch: ch}
	s.subs = append(s.subs, sub)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, existing := range s.subs {
			if existing == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}, nil
}

// publish must be called with s.mu held.
func (s *Session) publish(ev Event) {
	for _, sub := range s.subs {
		if err := channels.SendNonBlock(sub.ch, ev); err != nil {
			sub.dropped++
			s.logger.Debug("capture event dropped", "to", ev.To, "error", err, "dropped", sub.dropped)
		}
	}
}
