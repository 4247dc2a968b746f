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
	"sync/atomic"
	"time"
)

// controlled is shared by all clones of ControlUserMock
type controlled struct {
	// Sleep cycle duration, ms
	Sleep int64
	// Fail makes every cycle fail when set to 1
	Fail int32
	// Cycles amount of started cycles
	Cycles int64
}

type ControlUserMock struct {
	c        *controlled
	wait     time.Duration
	setupErr error
}

func NewControlUserMock(wait time.Duration) *ControlUserMock {
	return &ControlUserMock{c: &controlled{}, wait: wait}
}

func (a *ControlUserMock) Clone(_ *Runner) User {
	return &ControlUserMock{c: a.c, wait: a.wait, setupErr: a.setupErr}
}

func (a *ControlUserMock) Setup(_ RunnerConfig) error {
	return a.setupErr
}

func (a *ControlUserMock) Do(ctx context.Context) DoResult {
	atomic.AddInt64(&a.c.Cycles, 1)
	if atomic.LoadInt32(&a.c.Fail) == 1 {
		return DoResult{RequestLabel: "mock", Error: "service error"}
	}
	sleepTime := time.Duration(atomic.LoadInt64(&a.c.Sleep)) * time.Millisecond
	select {
	case <-ctx.Done():
		return DoResult{RequestLabel: "mock", Error: ctx.Err().Error()}
	case <-time.After(sleepTime):
	}
	return DoResult{RequestLabel: "mock", StatusCode: 200}
}

func (a *ControlUserMock) WaitTime() time.Duration {
	return a.wait
}

func (a *ControlUserMock) Teardown() error {
	return nil
}

func failAfter(c *controlled, t time.Duration) {
	go func() {
		time.Sleep(t)
		atomic.StoreInt32(&c.Fail, 1)
	}()
}

var errMockSetup = errors.New("mock setup failed")
