// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging configures the process-wide slog logger on top of zerolog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

const DefaultLogLevel = slog.LevelInfo

// ParseLogLevel will convert the slog level configuration to slog.Level values.
func ParseLogLevel(levelStr string) (slog.Level, error) {
	switch {
	case strings.EqualFold(levelStr, slog.LevelDebug.String()):
		return slog.LevelDebug, nil
	case strings.EqualFold(levelStr, slog.LevelInfo.String()):
		return slog.LevelInfo, nil
	case strings.EqualFold(levelStr, slog.LevelWarn.String()):
		return slog.LevelWarn, nil
	case strings.EqualFold(levelStr, slog.LevelError.String()):
		return slog.LevelError, nil
	}

	return DefaultLogLevel, fmt.Errorf("unknown level string: '%s', defaulting to LevelInfo", levelStr)
}

// NewLogger returns a slog.Logger writing to w through zerolog. Output is
// JSON when json is set and a human readable console format otherwise.
func NewLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	zerologLogger := zerolog.New(w).
		With().
		Timestamp().
		Stack().
		Logger()

	if !json {
		zerologLogger = zerologLogger.Output(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.StampMicro,
		})
	}

	return slog.New(
		slogzerolog.Option{
			Level:  level,
			Logger: &zerologLogger,
		}.NewZerologHandler(),
	)
}

// ConfigureLogger installs a logger writing to stderr as the slog default.
func ConfigureLogger(level slog.Level, json bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	//nolint
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	slog.SetDefault(NewLogger(os.Stderr, level, json))
}
