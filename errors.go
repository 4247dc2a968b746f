/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"errors"
)

var (
	errUserDoTimedOut = "user Do(ctx) timeout"
	errUnknownUser    = "unknown user kind: %s"

	ErrUserSetup     = errors.New("error when setup user")
	ErrInvalidConfig = errors.New("invalid runner config")
	ErrRunFailed     = errors.New("run failed")
	ErrNoTransport   = errors.New("form user requires transport and observation sink")
)
