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

package o4actl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProcessFlowRequest(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(settings, []byte(`{"preprocessing":{"cmdArgs":["--nocheck"]}}`), 0o644))

	req, err := loadProcessFlowRequest([]string{"0001"}, []string{"preprocessing"}, settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001"}, req.PageIDs)
	assert.Equal(t, []string{"preprocessing"}, req.ProcessesToExecute)
	assert.Contains(t, req.ProcessSettings, "preprocessing")
}

func TestLoadProcessFlowRequestWithoutSettingsFile(t *testing.T) {
	req, err := loadProcessFlowRequest(nil, []string{"recognition"}, "")
	require.NoError(t, err)
	assert.NotNil(t, req.ProcessSettings, "the execute body always carries a processSettings object")
	assert.Empty(t, req.ProcessSettings)
}

func TestLoadProcessFlowRequestBadSettings(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(settings, []byte(`["not","an","object"]`), 0o644))

	_, err := loadProcessFlowRequest(nil, []string{"recognition"}, settings)
	require.Error(t, err)

	_, err = loadProcessFlowRequest(nil, []string{"recognition"}, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestGetRootCommand(t *testing.T) {
	root := GetRootCommand()
	require.NotNil(t, root)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"version", "open", "pages", "threads", "status", "wait", "exec", "convert", "run"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
