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

package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenliquidlight/modservice/pkg/controller"
	"github.com/greenliquidlight/modservice/pkg/gateway"
	"github.com/greenliquidlight/modservice/pkg/models"
)

// TestControllerAgainstGateway drives the operator workflow through the real
// HTTP client and REST API.
func TestControllerAgainstGateway(t *testing.T) {
	srv, manager := newTestAPI(t)
	ctx := context.Background()

	c := controller.New(gateway.NewHTTPClient(srv.URL), nil)
	require.NoError(t, c.Init(ctx))

	_, ok := c.Active()
	assert.False(t, ok)

	st, err := c.Read(ctx, models.KindCoils)
	require.NoError(t, err)
	assert.Equal(t, controller.MsgSelectServer, st.Message)

	rec, err := c.CreateServer(ctx, models.ServerSpec{Port: 1502, UnitID: 1, CoilsSize: 4, HoldingSize: 2})
	require.NoError(t, err)

	active, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, rec.ID, active.ID)
	assert.Equal(t, models.ServerStatusRunning, active.Status)

	st, err = c.Read(ctx, models.KindCoils)
	require.NoError(t, err)
	assert.Equal(t, controller.MsgLoaded, st.Message)
	assert.Equal(t,
		[]models.RegisterValue{models.Bool(false), models.Bool(false), models.Bool(false), models.Bool(false)},
		c.Snapshot(models.KindCoils).Baseline)

	_, err = c.RecordEdit(models.KindCoils, 2, "1")
	require.NoError(t, err)

	diff, err := c.Diff(models.KindCoils)
	require.NoError(t, err)
	assert.Equal(t, []models.RegisterChange{{Addr: 2, Value: models.Bool(true)}}, diff)

	st, err = c.Write(ctx, models.KindCoils)
	require.NoError(t, err)
	assert.Equal(t, "Wrote 1 value.", st.Message)
	assert.Equal(t, models.Bool(true), c.Snapshot(models.KindCoils).Baseline[2])

	coils, err := manager.CoilsGet(rec.ID, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true, false}, coils)

	st, err = c.Write(ctx, models.KindCoils)
	require.NoError(t, err)
	assert.Equal(t, controller.MsgNoChanges, st.Message)

	// Holding values changed behind the operator's back show up on read.
	require.NoError(t, manager.HoldingSet(rec.ID, 1, 4242))

	_, err = c.Read(ctx, models.KindHolding)
	require.NoError(t, err)
	assert.Equal(t, []models.RegisterValue{models.U16(0), models.U16(4242)}, c.Snapshot(models.KindHolding).Edits)
}

func TestControllerReportsGatewayDetail(t *testing.T) {
	srv, manager := newTestAPI(t)
	ctx := context.Background()

	_, err := manager.CreateAndStart(models.ServerSpec{Port: 1502, UnitID: 1, CoilsSize: 2, HoldingSize: 2})
	require.NoError(t, err)

	c := controller.New(gateway.NewHTTPClient(srv.URL), nil)
	require.NoError(t, c.Init(ctx))

	// Bad specs are stopped before they reach the gateway.
	_, err = c.CreateServer(ctx, models.ServerSpec{Port: 0, UnitID: 1, CoilsSize: 1, HoldingSize: 1})
	require.ErrorIs(t, err, models.ErrValidation)

	assert.Len(t, manager.List(), 1)

	_, err = gateway.NewHTTPClient(srv.URL).ReadRegisters(ctx, "missing", models.KindHolding, 0, 1)
	require.Error(t, err)
	assert.Equal(t, "Server not found", err.Error())
	assert.True(t, gateway.IsNotFound(err))
}
