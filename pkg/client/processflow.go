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
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/log"
)

const (
	executeEndpoint = "/ajax/processFlow/execute"
	currentEndpoint = "/ajax/processFlow/current"
)

// ProcessFlowRequest describes one processFlow/execute call: which pages to
// run through which processes, with per-process settings keyed by process
// name. The field names follow the JSON body the web UI sends.
type ProcessFlowRequest struct {
	PageIDs            []string               `json:"pageIds"`
	ProcessesToExecute []string               `json:"processesToExecute"`
	ProcessSettings    map[string]interface{} `json:"processSettings"`
}

// RetryOptions bounds ExecuteProcessFlowWithRetries.
type RetryOptions struct {
	// Attempts is the total attempt budget. Polling a busy server consumes
	// an attempt without issuing the POST.
	Attempts int
	// Sleep is the fixed delay between attempts.
	Sleep time.Duration
}

// DefaultRetryOptions mirror the web UI's retry behavior.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{Attempts: 12, Sleep: 2 * time.Second}
}

// ExecuteProcessFlow starts the process flow for the given pages. Only
// HTTP 200 counts as accepted; OCR4all answers anything else, including
// 2xx variants, when the flow was not started.
func (c *Client) ExecuteProcessFlow(ctx context.Context, req ProcessFlowRequest) error {
	status, body, err := c.postJSON(ctx, executeEndpoint, req, nil, c.execTimeout)
	if err != nil {
		return errors.Wrapf(err, "request %s", executeEndpoint)
	}
	if status != http.StatusOK {
		return &EndpointError{Endpoint: executeEndpoint, StatusCode: status, Snippet: snippet(body)}
	}
	return nil
}

// ExecuteProcessFlowWithRetries starts the process flow, waiting out a busy
// server. Before each attempt the current status is polled; while a flow is
// already running the attempt is spent sleeping instead of POSTing, so a
// permanently busy server exhausts the budget without ever issuing the
// execute call. The POST carries the XHR headers the UI sends, since
// OCR4all deployments behind a proxy reject the call without them.
func (c *Client) ExecuteProcessFlowWithRetries(ctx context.Context, req ProcessFlowRequest, opts RetryOptions) error {
	if opts.Attempts < 1 {
		opts = DefaultRetryOptions()
	}

	headers := http.Header{}
	headers.Set("X-Requested-With", "XMLHttpRequest")
	headers.Set("Origin", c.origin)
	headers.Set("Referer", c.referer)

	// retry.Do strips the Unrecoverable marker from the error it returns,
	// so the poll failure is kept aside to tell it apart from an
	// exhausted attempt budget.
	var pollErr error
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++

			cur, err := c.CurrentProcess(ctx)
			if err != nil {
				// Polling failures mean the server is unreachable, not
				// busy; retrying the execute budget against that is
				// pointless.
				pollErr = err
				return retry.Unrecoverable(err)
			}
			if cur != "" {
				log.Infof("processFlow/execute attempt %d/%d: server busy with %q", attempt, opts.Attempts, cur)
				return errors.Errorf("ocr4all busy: %s", cur)
			}

			status, body, err := c.postJSON(ctx, executeEndpoint, req, headers, c.execTimeout)
			if err != nil {
				return errors.Wrapf(err, "request %s", executeEndpoint)
			}
			log.Infof("processFlow/execute attempt %d/%d -> HTTP %d, len=%d", attempt, opts.Attempts, status, len(body))
			if status != http.StatusOK {
				log.Errorf("processFlow/execute failed: HTTP %d: %s", status, snippet(body))
				return &EndpointError{Endpoint: executeEndpoint, StatusCode: status, Snippet: snippet(body)}
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(opts.Attempts)),
		retry.Delay(opts.Sleep),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if pollErr != nil {
			return pollErr
		}
		if ctx.Err() != nil {
			return err
		}
		return &RetriesExhaustedError{Attempts: opts.Attempts}
	}
	return nil
}

// CurrentProcess returns the process flow step the server is busy with, or
// "" when it is idle.
func (c *Client) CurrentProcess(ctx context.Context) (string, error) {
	return c.getText(ctx, currentEndpoint, nil)
}

// WaitForCompletion polls the current process flow step once a second until
// the server reports idle. Status changes are logged once; a server that
// stays busy past timeout yields a WaitTimeoutError.
func (c *Client) WaitForCompletion(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	last := "\x00" // sentinel so the first status always logs

	for {
		cur, err := c.CurrentProcess(ctx)
		if err != nil {
			return err
		}

		if cur != last {
			log.Infof("ocr4all process flow status: %q", cur)
			last = cur
		}

		if cur == "" {
			return nil
		}

		if time.Now().After(deadline) {
			return &WaitTimeoutError{Timeout: timeout, LastStatus: cur}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
