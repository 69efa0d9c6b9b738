package simulation

import (
	"context"

	"github.com/andrescamacho/citysim-go/internal/domain/building"
)

// ReportSink receives every completed tick report.
// Implementations must not retain pointers into engine state.
type ReportSink interface {
	Publish(ctx context.Context, report *TickReport) error
}

// ReportSinkFunc adapts a function to ReportSink
type ReportSinkFunc func(ctx context.Context, report *TickReport) error

// Publish calls f
func (f ReportSinkFunc) Publish(ctx context.Context, report *TickReport) error {
	return f(ctx, report)
}

// EventSource supplies the host events due before a given tick
type EventSource interface {
	EventsFor(tick uint64) []building.Event
}
