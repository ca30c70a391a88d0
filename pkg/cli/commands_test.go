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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/greenliquidlight/modservice/pkg/controller"
	"github.com/greenliquidlight/modservice/pkg/directory"
	"github.com/greenliquidlight/modservice/pkg/gateway"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(t *testing.T, cfg *CmdConfig)
		wantErr error
	}{
		{
			name: "interactive",
			args: []string{"-gateway", "10.0.0.5:8000"},
			want: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Empty(t, cfg.SubCmd)
				assert.Equal(t, "10.0.0.5:8000", cfg.GatewayURL)
			},
		},
		{
			name: "servers json",
			args: []string{"servers", "-json"},
			want: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "servers", cfg.SubCmd)
				assert.True(t, cfg.JSON)
			},
		},
		{
			name: "create keeps defaults",
			args: []string{"-config", "admin.json", "create", "-port", "1503"},
			want: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "admin.json", cfg.ConfigFile)
				assert.Equal(t, models.ServerSpec{Port: 1503, UnitID: 1, CoilsSize: 100, HoldingSize: 2000}, cfg.Spec)
			},
		},
		{
			name:    "create invalid unit id",
			args:    []string{"create", "-unit-id", "300"},
			wantErr: models.ErrValidation,
		},
		{
			name: "write",
			args: []string{"write", "-server", "abc", "-kind", "coils", "-set", "0=1,3=true"},
			want: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "abc", cfg.ServerID)
				assert.Equal(t, "coils", cfg.Kind)
				assert.Equal(t, "0=1,3=true", cfg.Set)
			},
		},
		{
			name:    "read without server",
			args:    []string{"read", "-kind", "holding"},
			wantErr: errServerRequired,
		},
		{
			name:    "read with bad kind",
			args:    []string{"read", "-server", "abc", "-kind", "inputs"},
			wantErr: errKindRequired,
		},
		{
			name:    "write without pairs",
			args:    []string{"write", "-server", "abc", "-kind", "holding"},
			wantErr: errSetRequired,
		},
		{
			name:    "unknown subcommand",
			args:    []string{"delete"},
			wantErr: errUnknownSubcommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFlags(tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestParseSetPairs(t *testing.T) {
	pairs, err := parseSetPairs(" 0=1, 4 = 42 ,7=true")
	require.NoError(t, err)
	assert.Equal(t, []setPair{{addr: 0, raw: "1"}, {addr: 4, raw: "42"}, {addr: 7, raw: "true"}}, pairs)

	for _, bad := range []string{"1", "x=1", "-1=1", "=3"} {
		_, err := parseSetPairs(bad)
		require.ErrorIs(t, err, errInvalidSetPair, bad)
	}

	_, err = parseSetPairs("1=1,1=0")
	require.ErrorIs(t, err, errDuplicateAddr)

	_, err = parseSetPairs("  ")
	require.ErrorIs(t, err, errSetRequired)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{GatewayURL: "127.0.0.1:9000/"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://127.0.0.1:9000", cfg.GatewayURL)
	assert.Equal(t, models.Duration(15*time.Second), cfg.Timeout)
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "discard", cfg.Logging.Output)

	cfg = &Config{GatewayURL: "http://"}
	require.ErrorIs(t, cfg.Validate(), errInvalidGateway)

	cfg = DefaultConfig()
	cfg.Timeout = models.Duration(-time.Second)
	require.ErrorIs(t, cfg.Validate(), errInvalidTimeout)
}

func TestLoaderLoggerSilentForInteractive(t *testing.T) {
	interactive, err := ParseFlags([]string{"-gateway", "10.0.0.5:8000"})
	require.NoError(t, err)
	assert.NotNil(t, LoaderLogger(interactive))
	assert.NotNil(t, LoaderLogger(nil))

	sub, err := ParseFlags([]string{"servers"})
	require.NoError(t, err)
	assert.Nil(t, LoaderLogger(sub))
}

func newCommandController(t *testing.T) (*controller.Controller, *gateway.MockClient) {
	t.Helper()

	client := gateway.NewMockClient(gomock.NewController(t))

	return controller.New(client, logger.NewTestLogger()), client
}

func TestRunServers(t *testing.T) {
	client := gateway.NewMockClient(gomock.NewController(t))
	servers := []models.ServerRecord{record("a", "127.0.0.2", 8, 16)}

	client.EXPECT().ListServers(gomock.Any()).Return(servers, nil).Times(2)

	var out bytes.Buffer
	require.NoError(t, RunServers(context.Background(), client, &out, false))
	assert.Contains(t, out.String(), "ENDPOINT")
	assert.Contains(t, out.String(), "127.0.0.2:1502")
	assert.Contains(t, out.String(), "running")

	out.Reset()
	require.NoError(t, RunServers(context.Background(), client, &out, true))

	var got []models.ServerRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, servers, got)
}

func TestRunServersEmptyJSON(t *testing.T) {
	client := gateway.NewMockClient(gomock.NewController(t))
	client.EXPECT().ListServers(gomock.Any()).Return(nil, nil)

	var out bytes.Buffer
	require.NoError(t, RunServers(context.Background(), client, &out, true))
	assert.JSONEq(t, "[]", out.String())
}

func TestRunCreate(t *testing.T) {
	ctrl, client := newCommandController(t)
	spec := models.ServerSpec{Port: 1503, UnitID: 2, CoilsSize: 8, HoldingSize: 8}
	rec := record("new", "127.0.0.3", 8, 8)

	client.EXPECT().CreateServer(gomock.Any(), spec).Return(&rec, nil)
	client.EXPECT().ListServers(gomock.Any()).Return([]models.ServerRecord{rec}, nil)

	var out bytes.Buffer
	require.NoError(t, RunCreate(context.Background(), ctrl, spec, &out, true))

	var got models.ServerRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, rec, got)
}

func TestRunCreateRejected(t *testing.T) {
	ctrl, client := newCommandController(t)

	client.EXPECT().CreateServer(gomock.Any(), gomock.Any()).
		Return(nil, &gateway.GatewayError{StatusCode: 409, Detail: "Port 1502 already in use"})

	var out bytes.Buffer
	err := RunCreate(context.Background(), ctrl, models.DefaultServerSpec(), &out, false)
	require.ErrorContains(t, err, "Port 1502 already in use")
	assert.Empty(t, out.String())
}

func TestRunRead(t *testing.T) {
	ctrl, client := newCommandController(t)

	client.EXPECT().ListServers(gomock.Any()).Return([]models.ServerRecord{record("a", "127.0.0.2", 2, 3)}, nil)
	client.EXPECT().ReadRegisters(gomock.Any(), "a", models.KindHolding, 0, 3).
		Return([]models.RegisterValue{models.U16(7), models.U16(0), models.U16(65535)}, nil)

	var out bytes.Buffer
	cfg := &CmdConfig{ServerID: "a", Kind: "holding", JSON: true}
	require.NoError(t, RunRead(context.Background(), ctrl, cfg, &out))
	assert.JSONEq(t, `{"values":[7,0,65535]}`, out.String())
}

func TestRunReadUnknownServer(t *testing.T) {
	ctrl, client := newCommandController(t)

	client.EXPECT().ListServers(gomock.Any()).Return([]models.ServerRecord{record("a", "127.0.0.2", 2, 3)}, nil)

	err := RunRead(context.Background(), ctrl, &CmdConfig{ServerID: "zzz", Kind: "coils"}, &bytes.Buffer{})
	require.ErrorIs(t, err, directory.ErrUnknownServer)
}

func TestRunWriteSendsOnlyChangedAddresses(t *testing.T) {
	ctrl, client := newCommandController(t)

	client.EXPECT().ListServers(gomock.Any()).Return([]models.ServerRecord{record("a", "127.0.0.2", 4, 0)}, nil)
	client.EXPECT().ReadRegisters(gomock.Any(), "a", models.KindCoils, 0, 4).
		Return([]models.RegisterValue{models.Bool(true), models.Bool(false), models.Bool(false), models.Bool(false)}, nil)
	client.EXPECT().WriteRegisters(gomock.Any(), "a", models.KindCoils,
		[]models.RegisterChange{{Addr: 3, Value: models.Bool(true)}}).Return(nil)

	var out bytes.Buffer
	cfg := &CmdConfig{ServerID: "a", Kind: "coils", Set: "0=1,3=on"}
	require.NoError(t, RunWrite(context.Background(), ctrl, cfg, &out))
	assert.Contains(t, out.String(), "Wrote 1 value.")
}

func TestRunWriteNoChanges(t *testing.T) {
	ctrl, client := newCommandController(t)

	client.EXPECT().ListServers(gomock.Any()).Return([]models.ServerRecord{record("a", "127.0.0.2", 0, 2)}, nil)
	client.EXPECT().ReadRegisters(gomock.Any(), "a", models.KindHolding, 0, 2).
		Return([]models.RegisterValue{models.U16(5), models.U16(6)}, nil)

	var out bytes.Buffer
	cfg := &CmdConfig{ServerID: "a", Kind: "holding", Set: "1=6", JSON: true}
	require.NoError(t, RunWrite(context.Background(), ctrl, cfg, &out))
	assert.JSONEq(t, `{"status":"ok"}`, out.String())
}

func TestRunWriteRejectsBadValueBeforeWriting(t *testing.T) {
	ctrl, client := newCommandController(t)

	client.EXPECT().ListServers(gomock.Any()).Return([]models.ServerRecord{record("a", "127.0.0.2", 0, 2)}, nil)
	client.EXPECT().ReadRegisters(gomock.Any(), "a", models.KindHolding, 0, 2).
		Return([]models.RegisterValue{models.U16(5), models.U16(6)}, nil)

	cfg := &CmdConfig{ServerID: "a", Kind: "holding", Set: "0=1,1=70000"}
	err := RunWrite(context.Background(), ctrl, cfg, &bytes.Buffer{})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestRunWriteReportsGatewayDetail(t *testing.T) {
	ctrl, client := newCommandController(t)

	client.EXPECT().ListServers(gomock.Any()).Return([]models.ServerRecord{record("a", "127.0.0.2", 0, 2)}, nil)
	client.EXPECT().ReadRegisters(gomock.Any(), "a", models.KindHolding, 0, 2).
		Return([]models.RegisterValue{models.U16(5), models.U16(6)}, nil)
	client.EXPECT().WriteRegisters(gomock.Any(), "a", models.KindHolding, gomock.Any()).
		Return(&gateway.GatewayError{StatusCode: 400, Detail: "Address 1 out of range"})

	cfg := &CmdConfig{ServerID: "a", Kind: "holding", Set: "1=9"}
	err := RunWrite(context.Background(), ctrl, cfg, &bytes.Buffer{})
	require.ErrorIs(t, err, errRegisterOp)
	assert.Contains(t, err.Error(), "Address 1 out of range")
}
