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

package version

import (
	"encoding/json"
	"fmt"
	"io"
)

type Info struct {
	Version     string `json:"version,omitempty"`
	GitCommitID string `json:"gitCommitID,omitempty"`
}

// Set via -ldflags at build time.
var (
	version     = "dev"
	gitCommitID string
)

func Get() Info {
	return Info{
		Version:     version,
		GitCommitID: gitCommitID,
	}
}

// Print writes the version info to w, as JSON when format is "json".
func Print(w io.Writer, format string) error {
	v := Get()
	switch format {
	case "json":
		marshalled, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, string(marshalled))
	default:
		_, _ = fmt.Fprintf(w, "VERSION: %s\n", v.Version)
		if v.GitCommitID != "" {
			_, _ = fmt.Fprintf(w, "GIT_COMMIT_ID: %s\n", v.GitCommitID)
		}
	}
	return nil
}
