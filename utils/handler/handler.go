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

// Package handler lets HTTP handlers return errors, with the response status
// carried on the error itself.
package handler

import (
	"fmt"
	"net/http"

	"github.com/shoal/shoal/utils/log"
)

// Error is a handler error with an HTTP status. The zero status renders as
// 500.
type Error struct {
	status int
	msg    string
}

// Errorf creates an Error with Printf-style formatting. The status defaults
// to 500 until overridden with Status.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Status sets the response status of e.
func (e *Error) Status(s int) *Error {
	e.status = s
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error %d: %s", e.responseStatus(), e.msg)
}

func (e *Error) responseStatus() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

// Wrap converts an error-returning handler into an http.HandlerFunc. A
// returned *Error selects its own status; any other error maps to 500.
func Wrap(h func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		status := http.StatusInternalServerError
		msg := err.Error()
		if e, ok := err.(*Error); ok {
			status = e.responseStatus()
			msg = e.msg
		}
		w.WriteHeader(status)
		w.Write([]byte(msg))
		if status >= 500 {
			log.With("method", r.Method, "path", r.URL.Path).
				Errorf("Handler failed: %s", msg)
		}
	}
}
