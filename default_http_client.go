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
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httputil"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// FormTransport sends one request and returns the response status and body
type FormTransport interface {
	Send(ctx context.Context, method, url string, body []byte) (status int, respBody []byte, err error)
}

// NewLoggingHTTPClient creates new client with debug http
func NewLoggingHTTPClient(debug bool, transportTimeout int) *http.Client {
	var transport http.RoundTripper
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxConnsPerHost = 65535
	t.MaxIdleConns = 65535
	t.MaxIdleConnsPerHost = 65535
	t.DisableCompression = true
	t.ResponseHeaderTimeout = time.Duration(transportTimeout) * time.Second
	if debug {
		transport = &DumpTransport{t}
	} else {
		transport = t
	}
	cookieJar, _ := cookiejar.New(nil)
	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(transportTimeout) * time.Second,
		Jar:       cookieJar,
	}
}

// HTTPTransport sends form requests with net/http
type HTTPTransport struct {
	Client *http.Client
}

func (m *HTTPTransport) Send(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := m.Client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, respBody, nil
}

const (
	RequestHeader      = "========== REQUEST ==========\n%s\n"
	RequestHeaderBody  = "========== REQUEST ==========\n%s\n%s\n"
	ResponseHeaderBody = "========== RESPONSE ==========\n%s\n%s\n"
	ResponseHeader     = "========== RESPONSE ==========\n%s\n"
	HTTPBodyDelimiter  = "\r\n\r\n"
)

// DumpTransport log http request/responses, pprint bodies
type DumpTransport struct {
	r http.RoundTripper
}

func (d *DumpTransport) RoundTrip(h *http.Request) (*http.Response, error) {
	dump, _ := httputil.DumpRequestOut(h, true)
	if bodyIsJson(h.Header) {
		req, pprintBody := prettyPrintJsonBody(dump)
		fmt.Printf(RequestHeaderBody, req, pprintBody)
	} else {
		fmt.Printf(RequestHeader, dump)
	}
	resp, err := d.r.RoundTrip(h)
	if err != nil {
		return nil, err
	}
	// DumpResponse restores resp.Body, so the caller can still read it
	dump, _ = httputil.DumpResponse(resp, true)
	if bodyIsJson(resp.Header) {
		respString, pprintBody := prettyPrintJsonBody(dump)
		fmt.Printf(ResponseHeaderBody, respString, pprintBody)
		return resp, nil
	}
	fmt.Printf(ResponseHeader, dump)
	return resp, nil
}

// prettyPrintJsonBody returns http format head and pretty printed json body,
// body is returned as is if it is not valid json
func prettyPrintJsonBody(b []byte) (string, string) {
	sp := strings.SplitN(string(b), HTTPBodyDelimiter, 2)
	if len(sp) != 2 {
		return sp[0], ""
	}
	var v interface{}
	if err := jsoniter.Unmarshal([]byte(sp[1]), &v); err != nil {
		return sp[0], sp[1]
	}
	pprintBody, err := jsoniter.MarshalIndent(v, "", "    ")
	if err != nil {
		return sp[0], sp[1]
	}
	return sp[0], string(pprintBody)
}

func bodyIsJson(h http.Header) bool {
	return strings.Contains(h.Get("content-type"), "application/json")
}
