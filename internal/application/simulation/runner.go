package simulation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/citysim-go/internal/application/logging"
)

// Runner drives an engine tick after tick and hands every report to sinks.
//
// Ticks run on the caller's goroutine. Sink failures are logged and never
// stop the run.
type Runner struct {
	engine  *Engine
	limiter *rate.Limiter
	sinks   []ReportSink
	source  EventSource
}

// NewRunner creates a runner pacing ticks at ticksPerSecond.
// A non-positive rate runs ticks back to back.
func NewRunner(engine *Engine, ticksPerSecond float64, sinks ...ReportSink) *Runner {
	var limiter *rate.Limiter
	if ticksPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ticksPerSecond), 1)
	}
	return &Runner{
		engine:  engine,
		limiter: limiter,
		sinks:   sinks,
	}
}

// AddSink registers another report sink
func (r *Runner) AddSink(sink ReportSink) {
	r.sinks = append(r.sinks, sink)
}

// SetSource makes the runner submit the source's events before every tick
func (r *Runner) SetSource(source EventSource) {
	r.source = source
}

// Run executes ticks until maxTicks have run or ctx is cancelled.
// maxTicks of 0 runs until cancellation. Cancellation is not an error.
func (r *Runner) Run(ctx context.Context, maxTicks uint64) (*TickReport, error) {
	logger := logging.LoggerFromContext(ctx)
	var last *TickReport

	for ran := uint64(0); maxTicks == 0 || ran < maxTicks; ran++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return last, nil
				}
				return last, fmt.Errorf("tick limiter error: %w", err)
			}
		}

		if r.source != nil {
			r.engine.Submit(r.source.EventsFor(r.engine.CurrentTick() + 1)...)
		}

		report, err := r.engine.Tick(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return last, nil
			}
			return last, fmt.Errorf("tick %d: %w", r.engine.CurrentTick()+1, err)
		}
		last = report

		for _, sink := range r.sinks {
			if err := sink.Publish(ctx, report); err != nil {
				logger.Log(logging.LevelError, fmt.Sprintf("Failed to publish tick report: %v", err), map[string]interface{}{
					"tick": report.Tick,
					"sink": fmt.Sprintf("%T", sink),
				})
			}
		}
	}

	return last, nil
}
