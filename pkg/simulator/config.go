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
	"net"
	"strings"
	"time"

	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
)

const (
	defaultListenAddr      = ":8000"
	defaultIPPoolStart     = "127.0.0.2"
	defaultShutdownTimeout = 10 * time.Second
	defaultModbusTimeout   = 30 * time.Second
	defaultMaxClients      = 10
)

// Config is the modbus-sim configuration.
type Config struct {
	ListenAddr      string            `json:"listen_addr"`
	IPPoolStart     string            `json:"ip_pool_start"`
	DisableModbus   bool              `json:"disable_modbus"`
	ModbusTimeout   models.Duration   `json:"modbus_timeout"`
	MaxClients      int               `json:"max_clients"`
	ShutdownTimeout models.Duration   `json:"shutdown_timeout"`
	CORS            models.CORSConfig `json:"cors"`
	Logging         *logger.Config    `json:"logging"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      defaultListenAddr,
		IPPoolStart:     defaultIPPoolStart,
		ModbusTimeout:   models.Duration(defaultModbusTimeout),
		MaxClients:      defaultMaxClients,
		ShutdownTimeout: models.Duration(defaultShutdownTimeout),
		Logging:         logger.DefaultConfig(),
	}
}

// Validate fills unset fields with defaults and checks the rest.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.IPPoolStart == "" {
		c.IPPoolStart = defaultIPPoolStart
	}

	if _, err := parsePoolStart(c.IPPoolStart); err != nil {
		return err
	}

	if c.ModbusTimeout <= 0 {
		c.ModbusTimeout = models.Duration(defaultModbusTimeout)
	}

	if c.MaxClients <= 0 {
		c.MaxClients = defaultMaxClients
	}

	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = models.Duration(defaultShutdownTimeout)
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	return nil
}

// ManagerOptions turns the configuration into Manager options.
func (c *Config) ManagerOptions() []Option {
	return []Option{
		WithIPPoolStart(c.IPPoolStart),
		WithModbus(!c.DisableModbus),
		WithModbusTimeout(time.Duration(c.ModbusTimeout)),
		WithMaxClients(c.MaxClients),
	}
}

var loopback = net.IPNet{IP: net.IPv4(127, 0, 0, 0).To4(), Mask: net.CIDRMask(8, 32)}

func parsePoolStart(s string) (uint32, error) {
	ip := net.ParseIP(strings.TrimSpace(s)).To4()
	if ip == nil || !loopback.Contains(ip) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIPPool, s)
	}

	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3]), nil
}

func formatIP(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)).To4()
}
