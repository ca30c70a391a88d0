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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerSpecValidate(t *testing.T) {
	valid := DefaultServerSpec()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ServerSpec)
		field  string
	}{
		{name: "port zero", mutate: func(s *ServerSpec) { s.Port = 0 }, field: "port"},
		{name: "port too large", mutate: func(s *ServerSpec) { s.Port = 70000 }, field: "port"},
		{name: "unit id zero", mutate: func(s *ServerSpec) { s.UnitID = 0 }, field: "unit_id"},
		{name: "unit id 248", mutate: func(s *ServerSpec) { s.UnitID = 248 }, field: "unit_id"},
		{name: "no coils", mutate: func(s *ServerSpec) { s.CoilsSize = 0 }, field: "coils_size"},
		{name: "too many holding", mutate: func(s *ServerSpec) { s.HoldingSize = 65536 }, field: "holding_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultServerSpec()
			tt.mutate(&spec)

			err := spec.Validate()
			require.ErrorIs(t, err, ErrValidation)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestServerRecordSizeAndEndpoint(t *testing.T) {
	rec := ServerRecord{ID: "a", IP: "127.0.0.2", Port: 1502, CoilsSize: 4, HoldingSize: 2}

	assert.Equal(t, 4, rec.Size(KindCoils))
	assert.Equal(t, 2, rec.Size(KindHolding))
	assert.Equal(t, 0, rec.Size(RegisterKind("inputs")))
	assert.Equal(t, "127.0.0.2:1502", rec.Endpoint())
}

func TestDurationUnmarshal(t *testing.T) {
	var cfg struct {
		Timeout Duration `json:"timeout"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"15s"}`), &cfg))
	assert.Equal(t, 15*time.Second, time.Duration(cfg.Timeout))

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":1000}`), &cfg))
	assert.Equal(t, time.Microsecond, time.Duration(cfg.Timeout))

	require.Error(t, json.Unmarshal([]byte(`{"timeout":"soon"}`), &cfg))
	require.Error(t, json.Unmarshal([]byte(`{"timeout":true}`), &cfg))
}

func TestCORSOriginAllowed(t *testing.T) {
	assert.True(t, CORSConfig{}.OriginAllowed("http://anything"))
	assert.True(t, CORSConfig{AllowedOrigins: []string{"*"}}.OriginAllowed("http://anything"))

	cfg := CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}
	assert.True(t, cfg.OriginAllowed("http://localhost:3000"))
	assert.False(t, cfg.OriginAllowed("http://evil.com"))
}
