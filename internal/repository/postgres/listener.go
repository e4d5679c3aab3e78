package postgres

import (
	"encoding/json"
	"time"

	"arrentals-backend/internal/logger"
	"arrentals-backend/internal/repository"

	"github.com/lib/pq"
)

// ChangeListener wraps a pq.Listener subscribed to the NOTIFY channels fired
// by row triggers (<collection>_changed) and republishes notifications as
// typed events.
type ChangeListener struct {
	listener *pq.Listener
	events   chan repository.CollectionChange
	done     chan struct{}
}

func NewChangeListener(connStr string) (*ChangeListener, error) {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Error("Change listener connection problem", "event", ev, "error", err)
		}
	}

	l := pq.NewListener(connStr, 10*time.Second, time.Minute, reportProblem)
	for _, channel := range []string{"bookings_changed", "leads_changed", "payments_changed"} {
		if err := l.Listen(channel); err != nil {
			l.Close()
			return nil, err
		}
	}

	cl := &ChangeListener{
		listener: l,
		events:   make(chan repository.CollectionChange, 64),
		done:     make(chan struct{}),
	}
	go cl.run()
	return cl, nil
}

func (cl *ChangeListener) run() {
	defer close(cl.events)
	for {
		select {
		case <-cl.done:
			return
		case n := <-cl.listener.Notify:
			if n == nil {
				// nil is delivered after a reconnect; consumers re-fetch on
				// the next real event, nothing to forward.
				continue
			}
			change := repository.CollectionChange{}
			if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
				logger.Error("Failed to decode change notification", "channel", n.Channel, "error", err)
				continue
			}
			select {
			case cl.events <- change:
			default:
				logger.Warn("Change event buffer full, dropping notification", "collection", change.Collection)
			}
		case <-time.After(90 * time.Second):
			// Keep the connection honest during quiet periods.
			if err := cl.listener.Ping(); err != nil {
				logger.Error("Change listener ping failed", "error", err)
			}
		}
	}
}

// Events returns the stream of change notifications. The channel closes after
// Close is called.
func (cl *ChangeListener) Events() <-chan repository.CollectionChange {
	return cl.events
}

func (cl *ChangeListener) Close() error {
	close(cl.done)
	return cl.listener.Close()
}
