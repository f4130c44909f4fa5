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
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/log"
)

const (
	checkDirEndpoint          = "/ajax/overview/checkDir"
	validateEndpoint          = "/ajax/overview/validate"
	validateProjectEndpoint   = "/ajax/overview/validateProject"
	invalidateSessionEndpoint = "/ajax/overview/invalidateSession"
	checkPDFEndpoint          = "/ajax/overview/checkpdf"
	convertFilesEndpoint      = "/ajax/overview/convertProjectFiles"
)

// Image types OCR4all distinguishes in its overview and pagelist calls.
const (
	ImageTypeOriginal = "Original"
	ImageTypeBinary   = "Binary"
)

// OpenProject opens an OCR4all project the way overview.jsp does:
//
//  1. ajax/overview/checkDir
//  2. ajax/overview/validate
//  3. ajax/overview/validateProject
//
// Every step has to answer the literal text "true". When validate answers
// anything else, the UI also drops the server-side session, so this call
// issues ajax/overview/invalidateSession before reporting the failure.
func (c *Client) OpenProject(ctx context.Context, projectDir, imageType string, resetSession bool) error {
	// Priming request; establishes the JSESSIONID cookie the AJAX
	// endpoints are scoped to.
	if _, err := c.get(ctx, "/", nil); err != nil {
		return errors.Wrap(err, "open ocr4all session")
	}

	params := url.Values{}
	params.Set("projectDir", projectDir)
	params.Set("imageType", imageType)
	params.Set("resetSession", strconv.FormatBool(resetSession))
	body, err := c.getText(ctx, checkDirEndpoint, params)
	if err != nil {
		return err
	}
	if body != "true" {
		return &UnexpectedResponseError{Endpoint: checkDirEndpoint, Snippet: snippet([]byte(body))}
	}

	body, err = c.getText(ctx, validateEndpoint, nil)
	if err != nil {
		return err
	}
	if body != "true" {
		result := error(&UnexpectedResponseError{Endpoint: validateEndpoint, Snippet: snippet([]byte(body))})
		if _, ierr := c.get(ctx, invalidateSessionEndpoint, nil); ierr != nil {
			result = multierror.Append(result, errors.Wrap(ierr, "invalidate session"))
		}
		return result
	}

	params = url.Values{}
	params.Set("projectDir", projectDir)
	params.Set("imageType", imageType)
	body, err = c.getText(ctx, validateProjectEndpoint, params)
	if err != nil {
		return err
	}
	if body != "true" {
		return &UnexpectedResponseError{Endpoint: validateProjectEndpoint, Snippet: snippet([]byte(body))}
	}

	log.Infof("opened ocr4all project %q (imageType=%s)", projectDir, imageType)
	return nil
}

// CheckPDF reports whether the project contains PDF files that still need to
// be converted to images.
func (c *Client) CheckPDF(ctx context.Context) (bool, error) {
	body, err := c.getText(ctx, checkPDFEndpoint, nil)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(body, "true"), nil
}

// ConvertProjectFiles triggers the PDF-to-PNG conversion and returns the raw
// server response.
//
// Conversion of a large project can outlive any sane HTTP timeout while the
// server keeps working. A client-side read timeout is therefore not an
// error here: the call logs a warning and returns "" so the caller can go
// on to poll for completion. This leniency is deliberate and matches the
// web UI's behavior.
func (c *Client) ConvertProjectFiles(ctx context.Context, deleteBlank bool, dpi int) (string, error) {
	form := url.Values{}
	form.Set("deleteBlank", strconv.FormatBool(deleteBlank))
	form.Set("dpi", strconv.Itoa(dpi))

	status, body, err := c.postForm(ctx, convertFilesEndpoint, form, c.convertTimeout)
	if err != nil {
		if isReadTimeout(err) {
			log.Warnf("convertProjectFiles timed out after %s; assuming conversion continues server-side", c.convertTimeout)
			return "", nil
		}
		return "", errors.Wrapf(err, "request %s", convertFilesEndpoint)
	}
	if status < 200 || status >= 300 {
		return "", &EndpointError{Endpoint: convertFilesEndpoint, StatusCode: status, Snippet: snippet(body)}
	}
	return string(body), nil
}
