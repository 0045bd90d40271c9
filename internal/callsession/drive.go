package callsession

import (
	"context"
	"time"
)

// Drive feeds a call's backend events and a clock into ctrl until the call
// leaves Connecting/Active. A closed event channel counts as a disconnect.
// When ctx is cancelled the call is hung up and ctx.Err() is returned.
func Drive(ctx context.Context, ctrl *Controller, events <-chan Event, ticks <-chan time.Time, notify func(Notification)) error {
	emit := func(ns []Notification) {
		if notify == nil {
			return
		}
		for _, n := range ns {
			notify(n)
		}
	}

	for {
		if st := ctrl.State(); st != StateConnecting && st != StateActive {
			return nil
		}

		select {
		case <-ctx.Done():
			emit(ctrl.HangUp(context.WithoutCancel(ctx)))
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				emit(ctrl.HandleEvent(Event{Kind: EventDisconnected}))
				continue
			}
			emit(ctrl.HandleEvent(ev))

		case <-ticks:
			if ctrl.State() == StateActive {
				emit([]Notification{{Kind: Progress, Duration: ctrl.Tick()}})
			}
		}
	}
}
