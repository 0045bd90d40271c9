package adapters

import (
	"context"

	"leadcall_backend/internal/events"
	"leadcall_backend/platform/metrics"
)

// SubscribeMetrics feeds domain events into the Prometheus counters.
func SubscribeMetrics(bus events.Subscriber, m *metrics.Metrics) {
	bus.Subscribe(events.CallLogged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(events.CallLogged); ok {
			m.IncCallLogged(evt.Outcome)
		}
		return nil
	}))

	bus.Subscribe(events.LeadsImported{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		evt, ok := e.(events.LeadsImported)
		if !ok {
			return nil
		}
		m.AddImportRows("imported", evt.Imported)
		m.AddImportRows("duplicate", evt.Skipped-evt.Invalid-evt.Failed)
		m.AddImportRows("invalid", evt.Invalid)
		m.AddImportRows("failed", evt.Failed)
		return nil
	}))

	bus.Subscribe(events.ImportJobFinished{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(events.ImportJobFinished); ok {
			m.IncImportJob(evt.Status)
		}
		return nil
	}))
}
