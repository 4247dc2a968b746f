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
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormServiceRejectsInvalidForm(t *testing.T) {
	svc := NewFormService(0)
	ts := httptest.NewServer(svc.Handler())
	defer ts.Close()

	for _, body := range []string{`{`, `{"UserID": "1"}`} {
		resp, err := http.Post(ts.URL+"/"+FormPath, "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	require.Empty(t, svc.Forms())
	require.Len(t, svc.Requests(), 2)
}

func TestFormServiceEmptyListIsNoData(t *testing.T) {
	svc := NewFormService(0)
	ts := httptest.NewServer(svc.Handler())
	defer ts.Close()

	tr := &HTTPTransport{Client: http.DefaultClient}
	status, body, err := tr.Send(context.Background(), http.MethodGet, ts.URL+"/"+FormPath, nil)
	require.NoError(t, err)
	require.Equal(t, ObservationNoData, InspectFormResponse(status, body, err).Kind)

	svc.SetGetResponse(http.StatusOK, `null`)
	status, body, err = tr.Send(context.Background(), http.MethodGet, ts.URL+"/"+FormPath, nil)
	require.NoError(t, err)
	require.Equal(t, ObservationNoData, InspectFormResponse(status, body, err).Kind)

	svc.SetGetResponse(0, "")
	status, body, err = tr.Send(context.Background(), http.MethodGet, ts.URL+"/"+FormPath, nil)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(body))
	require.Equal(t, http.StatusOK, status)
}

func TestRunTestServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	srv := RunTestServer(addr, NewFormService(time.Millisecond))
	defer srv.Close()
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/" + FormPath)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
}
