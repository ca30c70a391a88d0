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
	"fmt"
	"sync"

	"github.com/simonvetter/modbus"
)

const (
	discreteInputCount = 100
	inputRegisterCount = 100
)

// store is the register memory of one simulated device. It serves both the
// REST gateway and Modbus TCP clients.
type store struct {
	mu       sync.RWMutex
	coils    []bool
	discrete []bool
	holding  []uint16
	input    []uint16
}

func newStore(coilsSize, holdingSize int) *store {
	return &store{
		coils:    make([]bool, coilsSize),
		discrete: make([]bool, discreteInputCount),
		holding:  make([]uint16, holdingSize),
		input:    make([]uint16, inputRegisterCount),
	}
}

func checkRange(addr, count, size int) error {
	if addr < 0 || count < 1 || addr > size || count > size-addr {
		return fmt.Errorf("%w: addr %d count %d (size %d)", ErrOutOfRange, addr, count, size)
	}

	return nil
}

func (s *store) getCoils(addr, count int) ([]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := checkRange(addr, count, len(s.coils)); err != nil {
		return nil, err
	}

	return append([]bool(nil), s.coils[addr:addr+count]...), nil
}

// setCoils writes every pair or none of them.
func (s *store) setCoils(addrs []int, values []bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, addr := range addrs {
		if err := checkRange(addr, 1, len(s.coils)); err != nil {
			return err
		}
	}

	for i, addr := range addrs {
		s.coils[addr] = values[i]
	}

	return nil
}

func (s *store) getHolding(addr, count int) ([]uint16, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := checkRange(addr, count, len(s.holding)); err != nil {
		return nil, err
	}

	return append([]uint16(nil), s.holding[addr:addr+count]...), nil
}

// setHolding writes every pair or none of them.
func (s *store) setHolding(addrs []int, values []uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, addr := range addrs {
		if err := checkRange(addr, 1, len(s.holding)); err != nil {
			return err
		}
	}

	for i, addr := range addrs {
		s.holding[addr] = values[i]
	}

	return nil
}

// HandleCoils serves FC1, FC5 and FC15. Requests for any unit id are
// answered, the device behaves as a single-slave context.
func (s *store) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	addr, count := int(req.Addr), int(req.Quantity)

	if req.IsWrite {
		addrs := make([]int, len(req.Args))
		for i := range req.Args {
			addrs[i] = addr + i
		}

		if err := s.setCoils(addrs, req.Args); err != nil {
			return nil, modbus.ErrIllegalDataAddress
		}

		return nil, nil
	}

	values, err := s.getCoils(addr, count)
	if err != nil {
		return nil, modbus.ErrIllegalDataAddress
	}

	return values, nil
}

// HandleDiscreteInputs serves FC2.
func (s *store) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addr, count := int(req.Addr), int(req.Quantity)
	if err := checkRange(addr, count, len(s.discrete)); err != nil {
		return nil, modbus.ErrIllegalDataAddress
	}

	return append([]bool(nil), s.discrete[addr:addr+count]...), nil
}

// HandleHoldingRegisters serves FC3, FC6 and FC16.
func (s *store) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	addr, count := int(req.Addr), int(req.Quantity)

	if req.IsWrite {
		addrs := make([]int, len(req.Args))
		for i := range req.Args {
			addrs[i] = addr + i
		}

		if err := s.setHolding(addrs, req.Args); err != nil {
			return nil, modbus.ErrIllegalDataAddress
		}

		return nil, nil
	}

	values, err := s.getHolding(addr, count)
	if err != nil {
		return nil, modbus.ErrIllegalDataAddress
	}

	return values, nil
}

// HandleInputRegisters serves FC4.
func (s *store) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addr, count := int(req.Addr), int(req.Quantity)
	if err := checkRange(addr, count, len(s.input)); err != nil {
		return nil, modbus.ErrIllegalDataAddress
	}

	return append([]uint16(nil), s.input[addr:addr+count]...), nil
}
