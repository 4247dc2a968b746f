/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"fmt"
	"time"
)

// CycleResult is one completed user cycle with timings
type CycleResult struct {
	// User number inside the runner
	User int
	// Tick second since runner start when the cycle ended
	Tick       int
	Begin, End time.Time
	Elapsed    time.Duration
	DoResult   DoResult
}

func (a CycleResult) String() string {
	return fmt.Sprintf(
		"Begin: %s, End: %s, Elapsed: %d, user: %d, tick: %d, doResult: %v",
		a.Begin.Format(time.RFC3339),
		a.End.Format(time.RFC3339),
		a.Elapsed,
		a.User,
		a.Tick,
		a.DoResult,
	)
}

// DoResult is the return value of a Do call on a User.
type DoResult struct {
	// Label identifying the task which is only used for reporting the Metrics.
	RequestLabel string
	// The error that happened when sending the requests or receiving the response.
	Error string
	// The HTTP status code.
	StatusCode int
	// Number of bytes transferred when sending the requests.
	BytesIn int64
	// Number of bytes transferred when receiving the responses.
	BytesOut int64
}
