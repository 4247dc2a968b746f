/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, enc := range []string{"console", "json"} {
		l, err := NewLogger(&RunnerConfig{LogEncoding: enc, LogLevel: "debug"})
		require.NoError(t, err)
		child := l.With("user", 1)
		require.NotSame(t, l.SugaredLogger, child.SugaredLogger)
		child.Debugf("logger %s ready", enc)
	}
	_, err := NewLogger(&RunnerConfig{LogEncoding: "console", LogLevel: "loud"})
	require.Error(t, err)
}
