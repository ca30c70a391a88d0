/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "debug",
		Debug:  true,
		Output: "stdout",
	}

	err := Init(config)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := GetLogger()
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.GetLevel())
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(&Config{Level: "chatty"}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)

	logger := GetLogger()
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level after SetDebug(true), got %v", logger.GetLevel())
	}

	SetDebug(false)

	logger = GetLogger()
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level after SetDebug(false), got %v", logger.GetLevel())
	}
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("test-component")

	if componentLogger.GetLevel() == zerolog.Disabled {
		t.Error("Component logger should not be disabled")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level == "" {
		t.Error("Default config should have a level set")
	}

	if config.Output == "" {
		t.Error("Default config should have an output set")
	}
}

func TestOpenOutput(t *testing.T) {
	w, err := OpenOutput("stderr")
	if err != nil || w != os.Stderr {
		t.Fatalf("expected stderr, got %v (%v)", w, err)
	}

	w, err = OpenOutput("discard")
	if err != nil || w != io.Discard {
		t.Fatalf("expected discard writer, got %v (%v)", w, err)
	}

	path := filepath.Join(t.TempDir(), "admin.log")

	zlog, err := New(&Config{Level: "info", Output: path})
	if err != nil {
		t.Fatalf("New with file output: %v", err)
	}

	zlog.Info().Str("component", "test").Msg("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestNewTestLoggerIsSilent(t *testing.T) {
	log := NewTestLogger()

	if log.Info().Enabled() {
		t.Error("test logger should not emit events")
	}
}
