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
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() ProcessFlowRequest {
	return ProcessFlowRequest{
		PageIDs:            []string{"0001", "0002"},
		ProcessesToExecute: []string{"preprocessing", "segmentationKraken"},
		ProcessSettings: map[string]interface{}{
			"preprocessing": map[string]interface{}{"cmdArgs": []string{"--nocheck"}},
		},
	}
}

func TestExecuteProcessFlow(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handle(executeEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []interface{}{"0001", "0002"}, body["pageIds"])
		assert.Equal(t, []interface{}{"preprocessing", "segmentationKraken"}, body["processesToExecute"])
		assert.Contains(t, body["processSettings"], "preprocessing")
	})

	err := f.client(t).ExecuteProcessFlow(context.Background(), testRequest())
	require.NoError(t, err)
}

func TestExecuteProcessFlowOnlyAcceptsHTTP200(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handle(executeEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	err := f.client(t).ExecuteProcessFlow(context.Background(), testRequest())
	require.Error(t, err)

	var eerr *EndpointError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, executeEndpoint, eerr.Endpoint)
	assert.Equal(t, http.StatusAccepted, eerr.StatusCode)
}

func TestExecuteWithRetriesBusyServerNeverReceivesPost(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(currentEndpoint, "recognition")

	err := f.client(t).ExecuteProcessFlowWithRetries(context.Background(), testRequest(),
		RetryOptions{Attempts: 3, Sleep: time.Millisecond})
	require.Error(t, err)

	var rerr *RetriesExhaustedError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 3, rerr.Attempts)

	assert.Equal(t, 3, f.countRequests(currentEndpoint))
	assert.Zero(t, f.countRequests(executeEndpoint), "busy server must never receive the execute POST")
}

func TestExecuteWithRetriesPostsOnceAfterIdle(t *testing.T) {
	f := newFakeOCR4all(t)

	var polls int32
	f.handle(currentEndpoint, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 3 {
			_, _ = w.Write([]byte("recognition"))
		}
	})
	f.handle(executeEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.NotEmpty(t, r.Header.Get("Origin"))
		assert.NotEmpty(t, r.Header.Get("Referer"))
	})

	err := f.client(t).ExecuteProcessFlowWithRetries(context.Background(), testRequest(),
		RetryOptions{Attempts: 5, Sleep: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 3, f.countRequests(currentEndpoint))
	assert.Equal(t, 1, f.countRequests(executeEndpoint), "exactly one POST once the server is idle")
}

func TestExecuteWithRetriesRetriesFailedPost(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(currentEndpoint, "")

	var posts int32
	f.handle(executeEndpoint, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&posts, 1) == 1 {
			http.Error(w, "no project open", http.StatusInternalServerError)
		}
	})

	err := f.client(t).ExecuteProcessFlowWithRetries(context.Background(), testRequest(),
		RetryOptions{Attempts: 3, Sleep: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, f.countRequests(executeEndpoint))
}

func TestExecuteWithRetriesUnreachableServerFailsFast(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handle(currentEndpoint, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	})

	err := f.client(t).ExecuteProcessFlowWithRetries(context.Background(), testRequest(),
		RetryOptions{Attempts: 5, Sleep: time.Millisecond})
	require.Error(t, err)

	var rerr *RetriesExhaustedError
	assert.False(t, errors.As(err, &rerr), "a dead server is not a retries-exhausted condition")

	var eerr *EndpointError
	require.ErrorAs(t, err, &eerr, "the status-poll failure itself must surface")
	assert.Equal(t, currentEndpoint, eerr.Endpoint)
	assert.Equal(t, http.StatusBadGateway, eerr.StatusCode)

	assert.Equal(t, 1, f.countRequests(currentEndpoint))
	assert.Zero(t, f.countRequests(executeEndpoint))
}

func TestCurrentProcess(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(currentEndpoint, " segmentationKraken \n")

	cur, err := f.client(t).CurrentProcess(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "segmentationKraken", cur)
}

func TestWaitForCompletionReturnsOnIdle(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(currentEndpoint, "")

	err := f.client(t).WaitForCompletion(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, f.countRequests(currentEndpoint), "idle on the first poll ends the wait")
}

func TestWaitForCompletionTimesOutWhileBusy(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(currentEndpoint, "recognition")

	err := f.client(t).WaitForCompletion(context.Background(), time.Millisecond)
	require.Error(t, err)

	var terr *WaitTimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "recognition", terr.LastStatus)
}

func TestWaitForCompletionHonorsContext(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(currentEndpoint, "recognition")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.client(t).WaitForCompletion(ctx, time.Minute)
	require.Error(t, err)
}
