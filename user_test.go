/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func DefaultRunnerCfg() *RunnerConfig {
	return &RunnerConfig{
		Name:           "test_runner",
		Users:          1,
		SpawnRate:      1,
		UserTimeoutSec: 1,
		TestTimeSec:    5,
	}
}

func newTestRunner(t *testing.T, cfg *RunnerConfig, u User) *Runner {
	r, err := NewRunner(cfg, u, WithLogger(NopLogger()), WithSink(NewObservationLog()))
	require.NoError(t, err)
	return r
}

func startRunUser(r *Runner) context.CancelFunc {
	r.started = time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.Cfg.TestTimeSec)*time.Second)
	r.TimeoutCtx = ctx
	r.CancelFunc = cancel
	r.usersWg.Add(1)
	go runUser(r.users[0], r, 0)
	return cancel
}

func TestCommonUserCycleSuccess(t *testing.T) {
	mock := NewControlUserMock(time.Hour)
	mock.c.Sleep = 10
	r := newTestRunner(t, DefaultRunnerCfg(), mock)
	cancel := startRunUser(r)
	defer cancel()

	res := <-r.results
	require.Empty(t, res.DoResult.Error)
	require.GreaterOrEqual(t, int64(res.Elapsed), int64(10*time.Millisecond))
	require.Equal(t, 0, res.User)
	require.Equal(t, 0, res.Tick)
	require.Equal(t, r.tick(res.End), res.Tick)
}

func TestCommonUserCycleTimeout(t *testing.T) {
	mock := NewControlUserMock(time.Hour)
	mock.c.Sleep = 2000
	r := newTestRunner(t, DefaultRunnerCfg(), mock)
	cancel := startRunUser(r)
	defer cancel()

	res := <-r.results
	require.Equal(t, errUserDoTimedOut, res.DoResult.Error)
}

func TestCommonUserWaitsBetweenCycles(t *testing.T) {
	mock := NewControlUserMock(300 * time.Millisecond)
	r := newTestRunner(t, DefaultRunnerCfg(), mock)
	cancel := startRunUser(r)
	defer cancel()

	first := <-r.results
	second := <-r.results
	require.GreaterOrEqual(t, int64(second.Begin.Sub(first.End)), int64(300*time.Millisecond))
}

func TestCommonUserStopsOnCancelDuringWait(t *testing.T) {
	mock := NewControlUserMock(time.Hour)
	r := newTestRunner(t, DefaultRunnerCfg(), mock)
	cancel := startRunUser(r)

	<-r.results
	cancel()
	done := make(chan struct{})
	go func() {
		r.usersWg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("user did not stop while waiting")
	}
}

func TestSleepCtx(t *testing.T) {
	require.True(t, sleepCtx(context.Background(), 0))
	require.True(t, sleepCtx(context.Background(), time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, sleepCtx(ctx, time.Hour))
	require.False(t, sleepCtx(ctx, 0))
}

func TestUserRegistry(t *testing.T) {
	u, err := UserFromString(FormUserKind)
	require.NoError(t, err)
	require.IsType(t, &FormUser{}, u)
	require.Contains(t, RegisteredUsers(), FormUserKind)

	_, err = UserFromString("unknown")
	require.Error(t, err)
}
