/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// handleShutdownSignal cancels the test on SIGINT/SIGTERM, returned func stops listening
func (r *Runner) handleShutdownSignal() func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-done:
			return
		case <-r.TimeoutCtx.Done():
			return
		case <-sigs:
			r.L.Infof("exit signal received, exiting")
			if r.Cfg.GoroutinesDump {
				buf := make([]byte, 1<<20)
				stacklen := runtime.Stack(buf, true)
				r.L.Infof("=== received SIGTERM ===\n*** goroutine dump...\n%s\n*** end\n", buf[:stacklen])
			}
			r.CancelFunc()
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// CreateFileOrReplace creates file, truncating existing one
func CreateFileOrReplace(fname string) (*os.File, error) {
	return os.OpenFile(fname, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
}

func MaxRPS(array []float64) float64 {
	if len(array) == 0 {
		return 0
	}
	var max = array[0]
	for _, value := range array {
		if max < value {
			max = value
		}
	}
	return max
}
