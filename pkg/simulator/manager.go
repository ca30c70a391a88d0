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

// Package simulator runs in-process Modbus TCP servers, each bound to its own
// loopback address, and exposes their register memory to the REST gateway.
package simulator

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
	"github.com/simonvetter/modbus"
	"golang.org/x/sync/errgroup"
)

type instance struct {
	record models.ServerRecord
	store  *store
	server *modbus.ModbusServer
	// running is set after a successful Start, also when Modbus is disabled.
	running bool
}

// Manager owns every simulated server. Servers are listed in creation order.
type Manager struct {
	mu        sync.RWMutex
	logger    logger.Logger
	instances map[string]*instance
	order     []string

	nextIP        uint32
	poolErr       error
	modbusEnabled bool
	modbusTimeout time.Duration
	maxClients    uint
	newID         func() string
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		m.logger = log
	}
}

// WithIPPoolStart sets the first loopback address handed out.
func WithIPPoolStart(ip string) Option {
	return func(m *Manager) {
		m.nextIP, m.poolErr = parsePoolStart(ip)
	}
}

// WithModbus turns the Modbus TCP listeners on or off. When off, servers only
// exist in memory and are reported as running once started.
func WithModbus(enabled bool) Option {
	return func(m *Manager) {
		m.modbusEnabled = enabled
	}
}

func WithModbusTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.modbusTimeout = d
	}
}

func WithMaxClients(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxClients = uint(n)
		}
	}
}

func withIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager builds a Manager. It fails when the IP pool start is invalid.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		logger:        logger.NewTestLogger(),
		instances:     make(map[string]*instance),
		modbusEnabled: true,
		modbusTimeout: defaultModbusTimeout,
		maxClients:    defaultMaxClients,
		newID:         func() string { return uuid.New().String() },
	}

	m.nextIP, m.poolErr = parsePoolStart(defaultIPPoolStart)

	for _, o := range opts {
		o(m)
	}

	if m.poolErr != nil {
		return nil, m.poolErr
	}

	return m, nil
}

// Create registers a stopped server with a fresh id and loopback address.
func (m *Manager) Create(spec models.ServerSpec) (models.ServerRecord, error) {
	if err := spec.Validate(); err != nil {
		return models.ServerRecord{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ip, err := m.allocIPLocked()
	if err != nil {
		return models.ServerRecord{}, err
	}

	inst := &instance{
		record: models.ServerRecord{
			ID:          m.newID(),
			IP:          ip,
			Port:        spec.Port,
			UnitID:      spec.UnitID,
			CoilsSize:   spec.CoilsSize,
			HoldingSize: spec.HoldingSize,
		},
		store: newStore(spec.CoilsSize, spec.HoldingSize),
	}

	m.instances[inst.record.ID] = inst
	m.order = append(m.order, inst.record.ID)

	m.logger.Info().
		Str("id", inst.record.ID).
		Str("endpoint", inst.record.Endpoint()).
		Int("unit_id", spec.UnitID).
		Msg("Server created")

	return m.recordLocked(inst), nil
}

// CreateAndStart creates a server and starts it. If the listener cannot be
// bound the server is removed again and the error wraps ErrStartFailed.
func (m *Manager) CreateAndStart(spec models.ServerSpec) (models.ServerRecord, error) {
	rec, err := m.Create(spec)
	if err != nil {
		return models.ServerRecord{}, err
	}

	if err := m.Start(rec.ID); err != nil {
		m.remove(rec.ID)

		return models.ServerRecord{}, err
	}

	return m.Get(rec.ID)
}

func (m *Manager) allocIPLocked() (string, error) {
	ip := formatIP(m.nextIP)
	if !loopback.Contains(ip) {
		return "", ErrIPPoolExhausted
	}

	m.nextIP++

	return ip.String(), nil
}

// Start binds the Modbus TCP listener. Starting a running server is a no-op.
func (m *Manager) Start(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, err := m.lookupLocked(id)
	if err != nil {
		return err
	}

	if inst.running {
		return nil
	}

	if m.modbusEnabled {
		server, err := modbus.NewServer(&modbus.ServerConfiguration{
			URL:        "tcp://" + net.JoinHostPort(inst.record.IP, strconv.Itoa(inst.record.Port)),
			Timeout:    m.modbusTimeout,
			MaxClients: m.maxClients,
		}, inst.store)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStartFailed, err)
		}

		if err := server.Start(); err != nil {
			m.logger.Warn().Err(err).Str("id", id).Str("endpoint", inst.record.Endpoint()).Msg("Failed to bind modbus listener")

			return fmt.Errorf("%w on %s: %w", ErrStartFailed, inst.record.Endpoint(), err)
		}

		inst.server = server
	}

	inst.running = true

	m.logger.Info().Str("id", id).Str("endpoint", inst.record.Endpoint()).Bool("modbus", m.modbusEnabled).Msg("Server started")

	return nil
}

// Stop closes the listener. Stopping a stopped server is a no-op.
func (m *Manager) Stop(id string) error {
	m.mu.Lock()

	inst, err := m.lookupLocked(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	server := inst.server
	inst.server = nil
	inst.running = false

	m.mu.Unlock()

	if server == nil {
		return nil
	}

	if err := server.Stop(); err != nil {
		return fmt.Errorf("stop %s: %w", id, err)
	}

	m.logger.Info().Str("id", id).Msg("Server stopped")

	return nil
}

// StopAll stops every server concurrently and waits until they are down or
// ctx is done.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	ids := append([]string(nil), m.order...)
	m.mu.RUnlock()

	g, _ := errgroup.WithContext(ctx)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			return m.Stop(id)
		})
	}

	done := make(chan error, 1)

	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.instances, id)

	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Status is "running" or "stopped".
func (m *Manager) Status(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, err := m.lookupLocked(id)
	if err != nil {
		return "", err
	}

	return statusOf(inst), nil
}

func (m *Manager) Get(id string) (models.ServerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, err := m.lookupLocked(id)
	if err != nil {
		return models.ServerRecord{}, err
	}

	return m.recordLocked(inst), nil
}

// List returns every server in creation order.
func (m *Manager) List() []models.ServerRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ServerRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.recordLocked(m.instances[id]))
	}

	return out
}

func (m *Manager) HoldingGet(id string, addr, count int) ([]uint16, error) {
	s, err := m.storeOf(id)
	if err != nil {
		return nil, err
	}

	return s.getHolding(addr, count)
}

func (m *Manager) HoldingSet(id string, addr int, value uint16) error {
	return m.HoldingSetMany(id, []int{addr}, []uint16{value})
}

// HoldingSetMany writes addrs[i] = values[i] for every i, or nothing if any
// address is out of range.
func (m *Manager) HoldingSetMany(id string, addrs []int, values []uint16) error {
	if len(addrs) != len(values) {
		return fmt.Errorf("%w: %d addresses for %d values", ErrOutOfRange, len(addrs), len(values))
	}

	s, err := m.storeOf(id)
	if err != nil {
		return err
	}

	return s.setHolding(addrs, values)
}

func (m *Manager) CoilsGet(id string, addr, count int) ([]bool, error) {
	s, err := m.storeOf(id)
	if err != nil {
		return nil, err
	}

	return s.getCoils(addr, count)
}

func (m *Manager) CoilsSet(id string, addr int, value bool) error {
	return m.CoilsSetMany(id, []int{addr}, []bool{value})
}

// CoilsSetMany writes addrs[i] = values[i] for every i, or nothing if any
// address is out of range.
func (m *Manager) CoilsSetMany(id string, addrs []int, values []bool) error {
	if len(addrs) != len(values) {
		return fmt.Errorf("%w: %d addresses for %d values", ErrOutOfRange, len(addrs), len(values))
	}

	s, err := m.storeOf(id)
	if err != nil {
		return err
	}

	return s.setCoils(addrs, values)
}

// ReadRegisters reads either space as tagged values.
func (m *Manager) ReadRegisters(id string, kind models.RegisterKind, addr, count int) ([]models.RegisterValue, error) {
	switch kind {
	case models.KindCoils:
		bits, err := m.CoilsGet(id, addr, count)
		if err != nil {
			return nil, err
		}

		out := make([]models.RegisterValue, len(bits))
		for i, b := range bits {
			out[i] = models.Bool(b)
		}

		return out, nil
	case models.KindHolding:
		words, err := m.HoldingGet(id, addr, count)
		if err != nil {
			return nil, err
		}

		out := make([]models.RegisterValue, len(words))
		for i, w := range words {
			out[i] = models.U16(w)
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// WriteRegisters applies changes to either space, all or nothing.
func (m *Manager) WriteRegisters(id string, kind models.RegisterKind, changes []models.RegisterChange) error {
	addrs := make([]int, len(changes))
	for i, c := range changes {
		addrs[i] = c.Addr
	}

	switch kind {
	case models.KindCoils:
		values := make([]bool, len(changes))
		for i, c := range changes {
			values[i] = c.Value.Bool()
		}

		return m.CoilsSetMany(id, addrs, values)
	case models.KindHolding:
		values := make([]uint16, len(changes))
		for i, c := range changes {
			values[i] = c.Value.U16()
		}

		return m.HoldingSetMany(id, addrs, values)
	}

	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (m *Manager) storeOf(id string) (*store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, err := m.lookupLocked(id)
	if err != nil {
		return nil, err
	}

	return inst.store, nil
}

func (m *Manager) lookupLocked(id string) (*instance, error) {
	inst, ok := m.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, id)
	}

	return inst, nil
}

func (*Manager) recordLocked(inst *instance) models.ServerRecord {
	rec := inst.record
	rec.Status = statusOf(inst)

	return rec
}

func statusOf(inst *instance) string {
	if inst.running {
		return models.ServerStatusRunning
	}

	return models.ServerStatusStopped
}
