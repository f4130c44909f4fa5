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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenProject(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handle(checkDirEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/book", r.URL.Query().Get("projectDir"))
		assert.Equal(t, "Original", r.URL.Query().Get("imageType"))
		assert.Equal(t, "true", r.URL.Query().Get("resetSession"))
		_, _ = w.Write([]byte("true"))
	})
	f.handleText(validateEndpoint, "true\n")
	f.handle(validateProjectEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/book", r.URL.Query().Get("projectDir"))
		_, _ = w.Write([]byte("true"))
	})

	c := f.client(t)
	err := c.OpenProject(context.Background(), "/data/book", ImageTypeOriginal, true)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/",
		checkDirEndpoint,
		validateEndpoint,
		validateProjectEndpoint,
	}, f.requestPaths(), "open must issue the overview.jsp sequence in order")
}

func TestOpenProjectCheckDirFailureAborts(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(checkDirEndpoint, "false")

	c := f.client(t)
	err := c.OpenProject(context.Background(), "/data/missing", ImageTypeOriginal, true)
	require.Error(t, err)

	var uerr *UnexpectedResponseError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, checkDirEndpoint, uerr.Endpoint)

	assert.Zero(t, f.countRequests(validateEndpoint), "failed checkDir must not reach validate")
	assert.Zero(t, f.countRequests(invalidateSessionEndpoint))
}

func TestOpenProjectValidateFailureInvalidatesSession(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(checkDirEndpoint, "true")
	f.handleText(validateEndpoint, "false")

	c := f.client(t)
	err := c.OpenProject(context.Background(), "/data/book", ImageTypeOriginal, true)
	require.Error(t, err)

	var uerr *UnexpectedResponseError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, validateEndpoint, uerr.Endpoint)

	assert.Equal(t, 1, f.countRequests(invalidateSessionEndpoint), "failed validate must drop the session")
	assert.Zero(t, f.countRequests(validateProjectEndpoint))
}

func TestOpenProjectValidateProjectFailureAborts(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handleText(checkDirEndpoint, "true")
	f.handleText(validateEndpoint, "true")
	f.handleText(validateProjectEndpoint, "<html>session expired</html>")

	c := f.client(t)
	err := c.OpenProject(context.Background(), "/data/book", ImageTypeOriginal, true)
	require.Error(t, err)

	var uerr *UnexpectedResponseError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, validateProjectEndpoint, uerr.Endpoint)
	assert.Contains(t, uerr.Snippet, "session expired")
}

func TestCheckPDF(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"needs conversion", "true", true},
		{"uppercase", "TRUE\n", true},
		{"nothing to convert", "false", false},
		{"garbage", "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeOCR4all(t)
			f.handleText(checkPDFEndpoint, tt.body)

			got, err := f.client(t).CheckPDF(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertProjectFiles(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handle(convertFilesEndpoint, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "true", r.PostForm.Get("deleteBlank"))
		assert.Equal(t, "400", r.PostForm.Get("dpi"))
		_, _ = w.Write([]byte("converted 12 pages"))
	})

	resp, err := f.client(t).ConvertProjectFiles(context.Background(), true, 400)
	require.NoError(t, err)
	assert.Equal(t, "converted 12 pages", resp)
}

func TestConvertProjectFilesReadTimeoutIsNotAnError(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handle(convertFilesEndpoint, func(w http.ResponseWriter, r *http.Request) {
		// Conversion that outlives the client-side timeout.
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	c := f.client(t, WithConvertTimeout(100*time.Millisecond))
	resp, err := c.ConvertProjectFiles(context.Background(), false, 300)
	require.NoError(t, err, "a read timeout means the server is still converting")
	assert.Empty(t, resp)
}

func TestConvertProjectFilesServerError(t *testing.T) {
	f := newFakeOCR4all(t)
	f.handle(convertFilesEndpoint, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversion blew up", http.StatusInternalServerError)
	})

	_, err := f.client(t).ConvertProjectFiles(context.Background(), false, 300)
	require.Error(t, err)

	var eerr *EndpointError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, http.StatusInternalServerError, eerr.StatusCode)
}
