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

// Package log holds the shared logger for the ocr4all-ajax packages.
// By default it writes leveled text to stdout; an optional rotating log
// file can be attached for long-running workflow drivers.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetLogger replaces the package logger. Intended for embedders that carry
// their own logrus setup.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}

// SetLevel adjusts the package logger's level.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// EnableFileOutput additionally writes log lines to path, rotating at
// maxSizeMB and keeping maxBackups rotated files around.
func EnableFileOutput(path string, maxSizeMB, maxBackups int) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
}

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }

func Infof(format string, args ...interface{}) { logger.Infof(format, args...) }

func Warnf(format string, args ...interface{}) { logger.Warnf(format, args...) }

func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
