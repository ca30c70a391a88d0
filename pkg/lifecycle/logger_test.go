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

package lifecycle

import (
	"bytes"
	"testing"

	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger("directory", &logger.Config{Level: "warn", Output: "discard"})
	require.NoError(t, err)
	require.NotNil(t, log)

	impl, ok := log.(*LoggerImpl)
	require.True(t, ok)
	assert.Equal(t, zerolog.WarnLevel, impl.logger.GetLevel())
}

func TestCreateLoggerRejectsBadLevel(t *testing.T) {
	_, err := CreateLogger(&logger.Config{Level: "loud", Output: "discard"})
	require.Error(t, err)
}

func TestComponentTagsChildLogger(t *testing.T) {
	var buf bytes.Buffer

	parent := &LoggerImpl{logger: zerolog.New(&buf)}
	child := Component(parent, "controller")

	child.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"controller"`)
	assert.NotNil(t, Component(nil, "x"))
}

func TestInitializeLoggerConfiguresGlobalLogger(t *testing.T) {
	t.Cleanup(func() { _ = InitializeLogger(nil) })

	require.NoError(t, InitializeLogger(&logger.Config{Level: "error", Output: "discard"}))
	assert.Equal(t, zerolog.ErrorLevel, logger.GetLogger().GetLevel())

	require.Error(t, InitializeLogger(&logger.Config{Level: "loud", Output: "discard"}))
	assert.Equal(t, zerolog.ErrorLevel, logger.GetLogger().GetLevel())
}
