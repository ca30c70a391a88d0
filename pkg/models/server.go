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
	"fmt"
	"net"
	"strconv"
)

// Server status values reported by the gateway.
const (
	ServerStatusRunning = "running"
	ServerStatusStopped = "stopped"
)

// Limits enforced on a ServerSpec.
const (
	MaxPort          = 65535
	MinUnitID        = 1
	MaxUnitID        = 247
	MaxRegisterCount = 65535
)

// ServerRecord describes one simulated Modbus TCP server as known to the gateway.
type ServerRecord struct {
	ID          string `json:"id"`
	IP          string `json:"ip"`
	Port        int    `json:"port"`
	UnitID      int    `json:"unit_id"`
	CoilsSize   int    `json:"coils_size"`
	HoldingSize int    `json:"holding_size"`
	Status      string `json:"status"`
}

// Size returns the addressable count of the given register space.
func (r *ServerRecord) Size(kind RegisterKind) int {
	switch kind {
	case KindCoils:
		return r.CoilsSize
	case KindHolding:
		return r.HoldingSize
	}

	return 0
}

// Endpoint is the Modbus TCP address, "ip:port".
func (r *ServerRecord) Endpoint() string {
	return net.JoinHostPort(r.IP, strconv.Itoa(r.Port))
}

// ServerSpec is the provisioning request for a new server.
type ServerSpec struct {
	Port        int `json:"port"`
	UnitID      int `json:"unit_id"`
	CoilsSize   int `json:"coils_size"`
	HoldingSize int `json:"holding_size"`
}

// DefaultServerSpec mirrors the gateway's defaults.
func DefaultServerSpec() ServerSpec {
	return ServerSpec{
		Port:        1502,
		UnitID:      1,
		CoilsSize:   100,
		HoldingSize: 2000,
	}
}

// Validate checks every field against the gateway limits.
func (s *ServerSpec) Validate() error {
	if s.Port < 1 || s.Port > MaxPort {
		return newValidationError("port", strconv.Itoa(s.Port), fmt.Sprintf("must be between 1 and %d", MaxPort))
	}

	if s.UnitID < MinUnitID || s.UnitID > MaxUnitID {
		return newValidationError("unit_id", strconv.Itoa(s.UnitID),
			fmt.Sprintf("must be between %d and %d", MinUnitID, MaxUnitID))
	}

	if s.CoilsSize < 1 || s.CoilsSize > MaxRegisterCount {
		return newValidationError("coils_size", strconv.Itoa(s.CoilsSize),
			fmt.Sprintf("must be between 1 and %d", MaxRegisterCount))
	}

	if s.HoldingSize < 1 || s.HoldingSize > MaxRegisterCount {
		return newValidationError("holding_size", strconv.Itoa(s.HoldingSize),
			fmt.Sprintf("must be between 1 and %d", MaxRegisterCount))
	}

	return nil
}
