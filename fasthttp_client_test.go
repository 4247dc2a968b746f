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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestFastHttpSendForm(t *testing.T) {
	svc := NewFormService(0)
	ts := httptest.NewServer(svc.Handler())
	defer ts.Close()
	c := NewLoggingFastHTTPClient(true, 5)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, _, err := c.Send(ctx, http.MethodPost, ts.URL+"/"+FormPath, []byte(`{"UserID":"1","Title":"t","Text":"x"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)

	status, body, err := c.Send(ctx, http.MethodGet, ts.URL+"/"+FormPath, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	var forms []FormSubmission
	require.NoError(t, jsoniter.Unmarshal(body, &forms))
	require.Equal(t, []FormSubmission{{UserID: "1", Title: "t", Text: "x"}}, forms)
}

func TestFastHttpSendNoDeadline(t *testing.T) {
	svc := NewFormService(0)
	ts := httptest.NewServer(svc.Handler())
	defer ts.Close()
	c := NewLoggingFastHTTPClient(false, 5)

	status, body, err := c.Send(context.Background(), http.MethodGet, ts.URL+"/"+FormPath, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[]`, string(body))
}

func TestFastHttpSendCancelled(t *testing.T) {
	c := NewLoggingFastHTTPClient(false, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.Send(ctx, http.MethodGet, "http://127.0.0.1:1/"+FormPath, nil)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestFastHttpDo(t *testing.T) {
	svc := NewFormService(0)
	ts := httptest.NewServer(svc.Handler())
	defer ts.Close()
	c := NewLoggingFastHTTPClient(false, 5)

	req := fasthttp.AcquireRequest()
	req.SetRequestURI(ts.URL + "/" + FormPath)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	require.NoError(t, c.Do(req, resp))
	require.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestFastHttpSendReturnsOnCancel(t *testing.T) {
	svc := NewFormService(3 * time.Second)
	ts := httptest.NewServer(svc.Handler())
	defer ts.Close()
	c := NewLoggingFastHTTPClient(false, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, _, err := c.Send(ctx, http.MethodGet, ts.URL+"/"+FormPath, nil)
	require.True(t, errors.Is(err, context.Canceled))
	require.Less(t, int64(time.Since(start)), int64(time.Second))
}
