/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
)

type FastHTTPClient struct {
	dump bool
	fasthttp.Client
}

// NewLoggingFastHTTPClient creates new client with debug http
func NewLoggingFastHTTPClient(debug bool, transportTimeout int) *FastHTTPClient {
	return &FastHTTPClient{
		debug,
		fasthttp.Client{
			MaxConnsPerHost:           65535,
			MaxIdleConnDuration:       90 * time.Second,
			MaxIdemponentCallAttempts: 1,
			ReadTimeout:               time.Duration(transportTimeout) * time.Second,
			WriteTimeout:              time.Duration(transportTimeout) * time.Second,
		},
	}
}

func (m *FastHTTPClient) Do(req *fasthttp.Request, resp *fasthttp.Response) error {
	if m.dump {
		log.Printf(RequestHeader, req.String())
	}
	if err := m.Client.DoRedirects(req, resp, 5); err != nil {
		return err
	}
	if m.dump {
		log.Printf(ResponseHeader, resp.String())
	}
	return nil
}

// Send implements FormTransport. Ctx deadline is used as request deadline,
// on ctx cancel Send returns at once and the request is released when fasthttp is done with it.
func (m *FastHTTPClient) Send(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	release := func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
	done := make(chan error, 1)
	go func() {
		done <- m.do(ctx, req, resp)
	}()
	select {
	case <-ctx.Done():
		go func() {
			<-done
			release()
		}()
		return 0, nil, ctx.Err()
	case err := <-done:
		defer release()
		if err != nil {
			return 0, nil, err
		}
		// response body is owned by the pool, copy before release
		respBody := append([]byte(nil), resp.Body()...)
		return resp.StatusCode(), respBody, nil
	}
}

func (m *FastHTTPClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return m.Do(req, resp)
	}
	if m.dump {
		log.Printf(RequestHeader, req.String())
	}
	if err := m.Client.DoDeadline(req, resp, deadline); err != nil {
		return err
	}
	if m.dump {
		log.Printf(ResponseHeader, resp.String())
	}
	return nil
}
