// Copyright (c) 2023-2026 Shoal Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package httputil

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"
)

const defaultTimeout = 60 * time.Second

// StatusError occurs when a request returns a status code outside the
// accepted set. It retains the response body for error messages.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e StatusError) Error() string {
	return fmt.Sprintf(
		"%s %s returned %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// IsStatus returns whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	e, ok := err.(StatusError)
	return ok && e.Status == status
}

type sendOptions struct {
	body          io.Reader
	timeout       time.Duration
	headers       map[string]string
	acceptedCodes map[int]bool
	transport     http.RoundTripper
}

func defaultSendOptions() sendOptions {
	return sendOptions{
		body:          bytes.NewReader(nil),
		timeout:       defaultTimeout,
		headers:       map[string]string{},
		acceptedCodes: map[int]bool{http.StatusOK: true},
	}
}

// SendOption overrides a default send setting.
type SendOption struct {
	f func(*sendOptions)
}

// SendBody specifies a request body.
func SendBody(body io.Reader) SendOption {
	return SendOption{func(o *sendOptions) { o.body = body }}
}

// SendTimeout specifies a request timeout.
func SendTimeout(t time.Duration) SendOption {
	return SendOption{func(o *sendOptions) { o.timeout = t }}
}

// SendHeaders specifies request headers.
func SendHeaders(headers map[string]string) SendOption {
	return SendOption{func(o *sendOptions) { o.headers = headers }}
}

// SendAcceptedCodes specifies the response codes which are not errors.
func SendAcceptedCodes(codes ...int) SendOption {
	m := make(map[int]bool)
	for _, c := range codes {
		m[c] = true
	}
	return SendOption{func(o *sendOptions) { o.acceptedCodes = m }}
}

// SendTransport specifies a transport for the request, e.g. a tracing
// round-tripper.
func SendTransport(rt http.RoundTripper) SendOption {
	return SendOption{func(o *sendOptions) { o.transport = rt }}
}

// Send sends an HTTP request and returns the response when its status is in
// the accepted set. Non-accepted statuses drain the body into a StatusError.
func Send(method, url string, options ...SendOption) (*http.Response, error) {
	opts := defaultSendOptions()
	for _, opt := range options {
		opt.f(&opts)
	}

	req, err := http.NewRequest(method, url, opts.body)
	if err != nil {
		return nil, fmt.Errorf("new request: %s", err)
	}
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}

	client := http.Client{
		Timeout:   opts.timeout,
		Transport: opts.transport,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if !opts.acceptedCodes[resp.StatusCode] {
		defer resp.Body.Close()
		b, err := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			b = []byte(fmt.Sprintf("<failed to read body: %s>", err))
		}
		return nil, StatusError{
			Method: method,
			URL:    url,
			Status: resp.StatusCode,
			Body:   string(b),
		}
	}
	return resp, nil
}

// Get sends a GET request.
func Get(url string, options ...SendOption) (*http.Response, error) {
	return Send("GET", url, options...)
}

// Post sends a POST request.
func Post(url string, options ...SendOption) (*http.Response, error) {
	return Send("POST", url, options...)
}
