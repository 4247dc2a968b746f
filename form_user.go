/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const FormUserKind = "form"

func init() {
	RegisterUser(FormUserKind, &FormUser{})
}

// FormUser submits a form and reads it back every cycle
type FormUser struct {
	cfg       UserConfig
	formURL   string
	transport FormTransport
	sink      ObservationSink
	// rnd is owned by the user goroutine
	rnd *rand.Rand
}

// NewFormUser creates ready to use user, transport and sink are shared with other users
func NewFormUser(cfg UserConfig, transport FormTransport, sink ObservationSink) (*FormUser, error) {
	u := newFormUser(cfg, transport, sink)
	if err := u.resolve(); err != nil {
		return nil, err
	}
	return u, nil
}

func newFormUser(cfg UserConfig, transport FormTransport, sink ObservationSink) *FormUser {
	return &FormUser{
		cfg:       cfg,
		transport: transport,
		sink:      sink,
		rnd:       rand.New(rand.NewSource(rand.Int63())),
	}
}

func (a *FormUser) resolve() error {
	if a.transport == nil || a.sink == nil {
		return ErrNoTransport
	}
	if problems := a.cfg.Validate(); len(problems) > 0 {
		return validationError(problems)
	}
	formURL, err := FormURL(a.cfg.TargetHost)
	if err != nil {
		return err
	}
	a.formURL = formURL
	return nil
}

// FormURL resolves form path against the host, trailing slash on host is optional
func FormURL(host string) (string, error) {
	base, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parse target host: %w", err)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	ref, _ := url.Parse(FormPath)
	return base.ResolveReference(ref).String(), nil
}

func (a *FormUser) Clone(r *Runner) User {
	return newFormUser(r.Cfg.User, r.Transport, r.Sink)
}

func (a *FormUser) Setup(_ RunnerConfig) error {
	return a.resolve()
}

// WaitTime draws uniformly from [MinWaitSec, MaxWaitSec]
func (a *FormUser) WaitTime() time.Duration {
	spread := a.cfg.MaxWaitSec - a.cfg.MinWaitSec
	secs := a.cfg.MinWaitSec + a.rnd.Float64()*spread
	return time.Duration(secs * float64(time.Second))
}

// Do posts a new submission then reads the form back and reports what came back.
// POST outcome is only visible in DoResult, it never produces an observation.
func (a *FormUser) Do(ctx context.Context) DoResult {
	res := DoResult{RequestLabel: FormPath}
	body, err := jsoniter.Marshal(NewFormSubmission())
	if err != nil {
		res.Error = fmt.Sprintf("marshal form: %s", err)
		return res
	}
	res.BytesOut += int64(len(body))

	status, respBody, err := a.transport.Send(ctx, http.MethodPost, a.formURL, body)
	res.BytesIn += int64(len(respBody))
	switch {
	case err != nil:
		res.Error = fmt.Sprintf("POST %s: %s", FormPath, err)
	case status >= http.StatusBadRequest:
		res.Error = fmt.Sprintf("POST %s: status %d", FormPath, status)
	}

	status, respBody, err = a.transport.Send(ctx, http.MethodGet, a.formURL, nil)
	res.BytesIn += int64(len(respBody))
	res.StatusCode = status
	// aborted cycle, the runner reports it
	if ctx.Err() != nil {
		if res.Error == "" {
			res.Error = ctx.Err().Error()
		}
		return res
	}
	obs := InspectFormResponse(status, respBody, err)
	a.sink.Observe(obs)
	if res.Error != "" {
		return res
	}
	switch {
	case err != nil:
		res.Error = fmt.Sprintf("GET %s: %s", FormPath, err)
	case obs.Error != "":
		res.Error = fmt.Sprintf("GET %s: %s", FormPath, obs.Error)
	case status >= http.StatusBadRequest:
		res.Error = fmt.Sprintf("GET %s: status %d", FormPath, status)
	}
	return res
}

func (a *FormUser) Teardown() error {
	return nil
}

// InspectFormResponse classifies GET outcome, transport errors are reported with status 0
func InspectFormResponse(status int, body []byte, err error) Observation {
	if err != nil {
		return Observation{Kind: ObservationFailed, StatusCode: status, Error: err.Error()}
	}
	if status != http.StatusOK {
		return Observation{Kind: ObservationFailed, StatusCode: status}
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Observation{Kind: ObservationNoData, StatusCode: status}
	}
	var payload interface{}
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return Observation{Kind: ObservationFailed, StatusCode: status, Error: fmt.Sprintf("decode payload: %s", err)}
	}
	if emptyPayload(payload) {
		return Observation{Kind: ObservationNoData, StatusCode: status}
	}
	return Observation{Kind: ObservationData, StatusCode: status, Payload: payload}
}

// emptyPayload reports json values carrying no data: null, {}, [], "", 0, false
func emptyPayload(v interface{}) bool {
	switch p := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(p) == 0
	case []interface{}:
		return len(p) == 0
	case string:
		return p == ""
	case float64:
		return p == 0
	case bool:
		return !p
	default:
		return false
	}
}
