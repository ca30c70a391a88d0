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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
)

var errBadPort = errors.New("port must be positive")

type testNested struct {
	Level string `json:"level"`
}

type testConfig struct {
	Name     string          `json:"name"`
	Port     int             `json:"port"`
	Enabled  bool            `json:"enabled"`
	Timeout  models.Duration `json:"timeout"`
	Origins  []string        `json:"origins"`
	Nested   testNested      `json:"nested"`
	Optional *testNested     `json:"optional"`
	Skipped  string          `json:"-"`
	private  string
}

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errBadPort
	}

	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeConfig(t, `{"name":"sim","port":8000,"timeout":"15s","nested":{"level":"debug"}}`)

	cfg := testConfig{Enabled: true}
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "sim", cfg.Name)
	assert.Equal(t, 8000, cfg.Port)
	assert.True(t, cfg.Enabled, "defaults survive fields missing from the file")
	assert.Equal(t, models.Duration(15*time.Second), cfg.Timeout)
	assert.Equal(t, "debug", cfg.Nested.Level)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	cfg := testConfig{Port: 1}
	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "none.json"), &cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Port)
}

func TestLoadRunsValidator(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeConfig(t, `{"port":0}`)

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &testConfig{})
	require.ErrorIs(t, err, errBadPort)
}

func TestLoadMalformedFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeConfig(t, `{"port":`)

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &testConfig{})
	require.Error(t, err)
}

func TestInvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &testConfig{Port: 1})
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "TESTSIM_")
	t.Setenv("TESTSIM_NAME", "from-env")
	t.Setenv("TESTSIM_PORT", "9100")
	t.Setenv("TESTSIM_ENABLED", "true")
	t.Setenv("TESTSIM_TIMEOUT", "3s")
	t.Setenv("TESTSIM_ORIGINS", "http://a, http://b")
	t.Setenv("TESTSIM_NESTED_LEVEL", "warn")

	var cfg testConfig
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, "from-env", cfg.Name)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, models.Duration(3*time.Second), cfg.Timeout)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Origins)
	assert.Equal(t, "warn", cfg.Nested.Level)
	assert.Nil(t, cfg.Optional)
}

func TestEnvDefaultPrefixAndPointerStruct(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "")
	t.Setenv(DefaultEnvPrefix+"PORT", "7")
	t.Setenv(DefaultEnvPrefix+"OPTIONAL_LEVEL", "info")
	t.Setenv(DefaultEnvPrefix+"TIMEOUT", "2000000000")

	var cfg testConfig
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, 7, cfg.Port)
	require.NotNil(t, cfg.Optional)
	assert.Equal(t, "info", cfg.Optional.Level)
	assert.Equal(t, models.Duration(2*time.Second), cfg.Timeout)
}

func TestEnvConfigJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "JSONSIM_")
	t.Setenv("JSONSIM_CONFIG_JSON", `{"name":"json","port":5}`)
	t.Setenv("JSONSIM_NAME", "ignored")

	var cfg testConfig
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, "json", cfg.Name)
	assert.Equal(t, 5, cfg.Port)
}

func TestEnvInvalidValue(t *testing.T) {
	t.Setenv("BADSIM_PORT", "not-a-number")

	err := NewEnvConfigLoader(nil, "BADSIM_").Load(context.Background(), "", &testConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BADSIM_PORT")
}

func TestEnvRejectsNonStruct(t *testing.T) {
	loader := NewEnvConfigLoader(nil, "X_")

	var n int
	require.ErrorIs(t, loader.Load(context.Background(), "", &n), ErrDstMustBePointerToStruct)
	require.ErrorIs(t, loader.Load(context.Background(), "", testConfig{}), ErrDstMustBeNonNilPointer)
}
