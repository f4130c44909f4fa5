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
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const (
	pagelistEndpoint = "/ajax/generic/pagelist"
	threadsEndpoint  = "/ajax/generic/threads"
)

// PageIDs returns the page identifiers of the open project for the given
// image type, in server order. OCR4all answers with a JSON array such as
// ["0001","0002"], or [] for an empty project.
func (c *Client) PageIDs(ctx context.Context, imageType string) ([]string, error) {
	params := url.Values{}
	params.Set("imageType", imageType)
	body, err := c.get(ctx, pagelistEndpoint, params)
	if err != nil {
		return nil, err
	}

	payload := gjson.ParseBytes(body)
	if !payload.IsArray() {
		return nil, &UnexpectedResponseError{Endpoint: pagelistEndpoint, Snippet: snippet(body)}
	}

	ids := make([]string, 0, len(payload.Array()))
	for _, el := range payload.Array() {
		ids = append(ids, el.String())
	}
	return ids, nil
}

// Threads returns the number of worker threads configured on the OCR4all
// server. HTTP failures are surfaced, but a malformed body yields 1 instead
// of an error; the UI does the same and the count only ever feeds process
// settings, where 1 is a safe floor. Deliberate leniency, kept for
// compatibility.
func (c *Client) Threads(ctx context.Context) (int, error) {
	body, err := c.getText(ctx, threadsEndpoint, nil)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(body)
	if err != nil || n < 1 {
		return 1, nil
	}
	return n, nil
}
