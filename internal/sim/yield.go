// Package sim holds scheduling primitives shared by the simulation engines.
package sim

import (
	"context"
	"runtime"
)

// YieldFunc suspends a simulation loop and hands control back to the
// scheduler, resuming at the next opportunity. Implementations must
// return a non-nil error to abort the run (typically ctx.Err() after
// cancellation).
type YieldFunc func(ctx context.Context) error

// Yield is the default YieldFunc: it observes context cancellation and
// otherwise cedes the processor so long trial loops cannot starve other
// goroutines sharing the scheduler.
func Yield(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runtime.Gosched()
	return nil
}
