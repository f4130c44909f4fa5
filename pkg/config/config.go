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

// Package config loads the client configuration from the environment and,
// when present, from a .o4actl.json file in the home directory. Environment
// variables win over the file; both win over the built-in defaults.
package config

import (
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/uniwuezpd/ocr4all-ajax/pkg/client"
)

const envPrefix = "OCR4ALL"

// Keys as they appear in the config file. The matching environment
// variables are the upper-cased, underscored forms with the OCR4ALL_
// prefix, e.g. OCR4ALL_BASE_URL, OCR4ALL_HTTP_TIMEOUT_S.
const (
	KeyBaseURL         = "base-url"
	KeyHTTPTimeoutS    = "http-timeout-s"
	KeyExecTimeoutS    = "exec-timeout-s"
	KeyWaitTimeoutS    = "wait-timeout-s"
	KeyConvertTimeoutS = "convert-timeout-s"
	KeyExecRetries     = "exec-retries"
	KeyExecRetrySleepS = "exec-retry-sleep-s"
	KeyOrigin          = "origin"
	KeyReferer         = "referer"
)

// Config carries everything the workflow client needs. Timeouts are kept in
// whole seconds because that is how the environment variables spell them.
type Config struct {
	BaseURL         string `mapstructure:"base-url"`
	HTTPTimeoutS    int    `mapstructure:"http-timeout-s"`
	ExecTimeoutS    int    `mapstructure:"exec-timeout-s"`
	WaitTimeoutS    int    `mapstructure:"wait-timeout-s"`
	ConvertTimeoutS int    `mapstructure:"convert-timeout-s"`
	ExecRetries     int    `mapstructure:"exec-retries"`
	ExecRetrySleepS int    `mapstructure:"exec-retry-sleep-s"`
	Origin          string `mapstructure:"origin"`
	Referer         string `mapstructure:"referer"`
}

// Load reads the configuration. A missing config file is fine; a broken one
// is not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".o4actl")
	v.SetConfigType("json")

	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBaseURL, "http://ocr4all:8080")
	v.SetDefault(KeyHTTPTimeoutS, 30)
	v.SetDefault(KeyExecTimeoutS, 60)
	v.SetDefault(KeyWaitTimeoutS, 3600)
	v.SetDefault(KeyConvertTimeoutS, 600)
	v.SetDefault(KeyExecRetries, 12)
	v.SetDefault(KeyExecRetrySleepS, 2)
	v.SetDefault(KeyOrigin, "")
	v.SetDefault(KeyReferer, "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}

// WaitTimeout returns the completion-wait budget as a duration.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutS) * time.Second
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions() []client.Option {
	return []client.Option{
		client.WithHTTPTimeout(time.Duration(c.HTTPTimeoutS) * time.Second),
		client.WithExecTimeout(time.Duration(c.ExecTimeoutS) * time.Second),
		client.WithConvertTimeout(time.Duration(c.ConvertTimeoutS) * time.Second),
		client.WithOriginReferer(c.Origin, c.Referer),
	}
}

// RetryOptions translates the configuration into execute-retry options.
func (c *Config) RetryOptions() client.RetryOptions {
	return client.RetryOptions{
		Attempts: c.ExecRetries,
		Sleep:    time.Duration(c.ExecRetrySleepS) * time.Second,
	}
}

// NewClient builds a ready-to-use workflow client from the configuration.
func (c *Config) NewClient() (*client.Client, error) {
	return client.New(c.BaseURL, c.ClientOptions()...)
}
