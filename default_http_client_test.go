/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrettyPrintJsonBody(t *testing.T) {
	head, body := prettyPrintJsonBody([]byte("POST /api/submit-form HTTP/1.1\r\nHost: x\r\n\r\n{\"a\":1}"))
	require.Equal(t, "POST /api/submit-form HTTP/1.1\r\nHost: x", head)
	require.Equal(t, "{\n    \"a\": 1\n}", body)

	_, body = prettyPrintJsonBody([]byte("GET / HTTP/1.1\r\n\r\nnot json"))
	require.Equal(t, "not json", body)

	_, body = prettyPrintJsonBody([]byte("GET / HTTP/1.1"))
	require.Empty(t, body)
}

func TestDumpTransportKeepsBody(t *testing.T) {
	svc := NewFormService(0)
	svc.SetGetResponse(http.StatusOK, `{"foo": "bar"}`)
	ts := httptest.NewServer(svc.Handler())
	defer ts.Close()

	tr := &HTTPTransport{Client: NewLoggingHTTPClient(true, 5)}
	status, body, err := tr.Send(context.Background(), http.MethodGet, ts.URL+"/"+FormPath, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"foo": "bar"}`, string(body))

	status, _, err = tr.Send(context.Background(), http.MethodPost, ts.URL+"/"+FormPath, []byte(`{"UserID":""}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHTTPTransportError(t *testing.T) {
	tr := &HTTPTransport{Client: NewLoggingHTTPClient(false, 1)}
	status, _, err := tr.Send(context.Background(), http.MethodGet, "http://127.0.0.1:1/"+FormPath, nil)
	require.Error(t, err)
	require.Equal(t, 0, status)
}
