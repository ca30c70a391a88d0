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

package simulator

import (
	"math"
	"testing"

	"github.com/simonvetter/modbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreHoldingRoundTrip(t *testing.T) {
	s := newStore(4, 3)

	require.NoError(t, s.setHolding([]int{0, 2}, []uint16{7, 65535}))

	values, err := s.getHolding(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint16{7, 0, 65535}, values)

	_, err = s.getHolding(2, 2)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.getHolding(0, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestStoreRangeDoesNotOverflow(t *testing.T) {
	s := newStore(10, 10)

	tests := []struct {
		name        string
		addr, count int
	}{
		{"max count", 1, math.MaxInt},
		{"max addr", math.MaxInt, 1},
		{"both max", math.MaxInt, math.MaxInt},
		{"addr past end", 11, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := s.getCoils(tt.addr, tt.count)
				require.ErrorIs(t, err, ErrOutOfRange)

				_, err = s.getHolding(tt.addr, tt.count)
				require.ErrorIs(t, err, ErrOutOfRange)
			})
		})
	}

	values, err := s.getHolding(10-3, 3)
	require.NoError(t, err)
	assert.Len(t, values, 3)
}

func TestStoreSetIsAllOrNothing(t *testing.T) {
	s := newStore(2, 2)

	err := s.setCoils([]int{0, 5}, []bool{true, true})
	require.ErrorIs(t, err, ErrOutOfRange)

	values, err := s.getCoils(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, values)
}

func TestStoreModbusHandlers(t *testing.T) {
	s := newStore(8, 4)

	_, err := s.HandleCoils(&modbus.CoilsRequest{Addr: 2, Quantity: 2, IsWrite: true, Args: []bool{true, true}})
	require.NoError(t, err)

	bits, err := s.HandleCoils(&modbus.CoilsRequest{Addr: 0, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true, true}, bits)

	_, err = s.HandleHoldingRegisters(&modbus.HoldingRegistersRequest{Addr: 3, Quantity: 1, IsWrite: true, Args: []uint16{42}})
	require.NoError(t, err)

	words, err := s.HandleHoldingRegisters(&modbus.HoldingRegistersRequest{Addr: 3, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint16{42}, words)

	_, err = s.HandleHoldingRegisters(&modbus.HoldingRegistersRequest{Addr: 3, Quantity: 2, IsWrite: true, Args: []uint16{1, 2}})
	require.ErrorIs(t, err, modbus.ErrIllegalDataAddress)

	_, err = s.HandleCoils(&modbus.CoilsRequest{Addr: 8, Quantity: 1})
	require.ErrorIs(t, err, modbus.ErrIllegalDataAddress)

	di, err := s.HandleDiscreteInputs(&modbus.DiscreteInputsRequest{Addr: 0, Quantity: discreteInputCount})
	require.NoError(t, err)
	assert.Len(t, di, discreteInputCount)

	_, err = s.HandleInputRegisters(&modbus.InputRegistersRequest{Addr: 99, Quantity: 2})
	require.ErrorIs(t, err, modbus.ErrIllegalDataAddress)
}
