/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"context"
	"errors"
	"time"
)

// User must be implemented by a virtual user behavior.
type User interface {
	// Setup should prepare the user before the first cycle.
	// It may want to access the Config of the Runner.
	Setup(c RunnerConfig) error
	// Do performs one task cycle and is executed in the user goroutine.
	// The context is used to cancel the requests on timeout.
	Do(ctx context.Context) DoResult
	// WaitTime returns the pause before the next cycle
	WaitTime() time.Duration
	// Teardown can be used to close the connection to the service
	Teardown() error
	// Clone should return a fresh new User
	// Make sure the new User has values for shared struct fields initialized at Setup.
	Clone(r *Runner) User
}

// runUser loops the user through do, report, wait cycles until the test ends
func runUser(u User, r *Runner, num int) {
	defer r.usersWg.Done()
	l := r.L.With("user", num)
	l.Debug("user started")
	for {
		if r.TimeoutCtx.Err() != nil {
			l.Debug("stopping user")
			return
		}
		ctx, cancel := context.WithTimeout(r.TimeoutCtx, time.Duration(r.Cfg.UserTimeoutSec)*time.Second)

		tStart := time.Now()
		doResult := u.Do(ctx)
		tEnd := time.Now()

		cycleTimedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
		cancel()
		// cycle was cut by the end of the test, it's not a result
		if r.TimeoutCtx.Err() != nil {
			l.Debug("stopping user")
			return
		}
		if cycleTimedOut {
			doResult.Error = errUserDoTimedOut
		}
		r.results <- CycleResult{
			User:     num,
			Tick:     r.tick(tEnd),
			Begin:    tStart,
			End:      tEnd,
			Elapsed:  tEnd.Sub(tStart),
			DoResult: doResult,
		}
		if !sleepCtx(r.TimeoutCtx, u.WaitTime()) {
			l.Debug("stopping user")
			return
		}
	}
}

// sleepCtx sleeps for d, returns false if ctx is done first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
