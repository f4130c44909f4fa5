// Copyright (c) 2024 The ocr4all-ajax Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"
)

// snippetLimit caps how much of a server response ends up in an error.
// OCR4all answers failed AJAX calls with full HTML error pages.
const snippetLimit = 500

// EndpointError reports a non-2xx answer from one AJAX endpoint.
type EndpointError struct {
	Endpoint   string
	StatusCode int
	Snippet    string
}

func (e *EndpointError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("ocr4all %s failed: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("ocr4all %s failed: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Snippet)
}

// UnexpectedResponseError reports a 2xx answer whose body does not have the
// shape the UI relies on, e.g. a non-"true" boolean or a non-array pagelist.
type UnexpectedResponseError struct {
	Endpoint string
	Snippet  string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("ocr4all %s returned unexpected response: %q", e.Endpoint, e.Snippet)
}

// WaitTimeoutError reports that the process flow stayed busy for the whole
// wait window. LastStatus holds the step the server reported last.
type WaitTimeoutError struct {
	Timeout    time.Duration
	LastStatus string
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for ocr4all process flow to finish (last status %q)", e.Timeout, e.LastStatus)
}

// RetriesExhaustedError reports that processFlow/execute did not succeed
// within the configured attempt budget.
type RetriesExhaustedError struct {
	Attempts int
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("processFlow/execute failed after %d attempts", e.Attempts)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetLimit {
		s = s[:snippetLimit]
	}
	return s
}

// isReadTimeout reports whether err is a client-side timeout on an
// in-flight request, as opposed to a refused connection or a cancelled
// context. url.Error wraps both the net timeout and the deadline case.
func isReadTimeout(err error) bool {
	if err == nil {
		return false
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return true
		}
		err = uerr.Err
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded)
}
