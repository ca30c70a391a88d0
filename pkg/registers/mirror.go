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

// Package registers mirrors the coil and holding register spaces of the
// active server and tracks operator edits against them.
package registers

import (
	"context"
	"fmt"
	"sync"

	"github.com/greenliquidlight/modservice/pkg/gateway"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
)

// Mirror holds one Space per kind for the active server. Every request issued
// through it takes a per-kind sequence number; a response whose sequence is no
// longer current is discarded with ErrSuperseded.
type Mirror struct {
	mu       sync.Mutex
	client   gateway.Client
	logger   logger.Logger
	serverID string
	spaces   map[models.RegisterKind]*Space
	seq      map[models.RegisterKind]uint64
}

// Snapshot is a point-in-time copy of a Space for rendering.
type Snapshot struct {
	Kind     models.RegisterKind
	ServerID string
	Baseline []models.RegisterValue
	Edits    []models.RegisterValue
}

// Size is the number of addresses in the snapshot.
func (s Snapshot) Size() int { return len(s.Baseline) }

// Dirty reports whether addr has an unwritten edit.
func (s Snapshot) Dirty(addr int) bool {
	return addr >= 0 && addr < len(s.Edits) && s.Edits[addr] != s.Baseline[addr]
}

// Batch is a pending write prepared by PrepareWrite.
type Batch struct {
	Kind     models.RegisterKind
	ServerID string
	Changes  []models.RegisterChange
	seq      uint64
}

// NewMirror returns an empty mirror with no server bound.
func NewMirror(client gateway.Client, log logger.Logger) *Mirror {
	if log == nil {
		log = logger.NewTestLogger()
	}

	m := &Mirror{
		client: client,
		logger: log,
		spaces: make(map[models.RegisterKind]*Space, len(models.RegisterKinds)),
		seq:    make(map[models.RegisterKind]uint64, len(models.RegisterKinds)),
	}

	for _, kind := range models.RegisterKinds {
		m.spaces[kind] = NewSpace(kind, 0)
	}

	return m
}

// Rebuild binds the mirror to rec and zero-fills both spaces to its sizes.
// A nil rec unbinds the mirror. Requests in flight for the previous server
// become superseded.
func (m *Mirror) Rebuild(rec *models.ServerRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.serverID = ""
	if rec != nil {
		m.serverID = rec.ID
	}

	for _, kind := range models.RegisterKinds {
		size := 0
		if rec != nil {
			size = rec.Size(kind)
		}

		m.rebuildLocked(kind, size)
	}

	m.logger.Debug().
		Str("server_id", m.serverID).
		Int("coils", m.spaces[models.KindCoils].Size()).
		Int("holding", m.spaces[models.KindHolding].Size()).
		Msg("Register mirror rebuilt")
}

// RebuildKind zero-fills a single space to size.
func (m *Mirror) RebuildKind(kind models.RegisterKind, size int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.spaceLocked(kind); err != nil {
		return err
	}

	m.rebuildLocked(kind, size)

	return nil
}

func (m *Mirror) rebuildLocked(kind models.RegisterKind, size int) {
	m.spaces[kind].Rebuild(size)
	m.seq[kind]++
}

// ServerID is the id of the server the mirror is bound to, or "".
func (m *Mirror) ServerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.serverID
}

// Size returns the size of the space, or 0 for an unknown kind.
func (m *Mirror) Size(kind models.RegisterKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.spaces[kind]; ok {
		return s.Size()
	}

	return 0
}

func (m *Mirror) Snapshot(kind models.RegisterKind) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{Kind: kind, ServerID: m.serverID}

	if s, ok := m.spaces[kind]; ok {
		snap.Baseline = s.Baseline()
		snap.Edits = s.Edits()
	}

	return snap
}

// Load reads the whole space from the gateway and replaces baseline and edits.
// loaded is false, with no request made, when the space is empty. On failure
// the space is left untouched.
func (m *Mirror) Load(ctx context.Context, kind models.RegisterKind) (loaded bool, err error) {
	m.mu.Lock()

	space, err := m.spaceLocked(kind)
	if err != nil {
		m.mu.Unlock()
		return false, err
	}

	size := space.Size()
	if size == 0 {
		m.mu.Unlock()
		return false, nil
	}

	m.seq[kind]++
	token := m.seq[kind]
	serverID := m.serverID

	m.mu.Unlock()

	values, err := m.client.ReadRegisters(ctx, serverID, kind, 0, size)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq[kind] != token {
		m.logger.Debug().Str("kind", string(kind)).Str("server_id", serverID).Msg("Dropping superseded read")

		return false, ErrSuperseded
	}

	if err != nil {
		return false, err
	}

	if err := space.Apply(values); err != nil {
		return false, err
	}

	return true, nil
}

// RecordEdit stores an operator edit for addr.
func (m *Mirror) RecordEdit(kind models.RegisterKind, addr int, value models.RegisterValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	space, err := m.spaceLocked(kind)
	if err != nil {
		return err
	}

	return space.RecordEdit(addr, value)
}

// RecordRawEdit parses and stores operator text for addr.
func (m *Mirror) RecordRawEdit(kind models.RegisterKind, addr int, raw string) (models.RegisterValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	space, err := m.spaceLocked(kind)
	if err != nil {
		return models.RegisterValue{}, err
	}

	return space.RecordRawEdit(addr, raw)
}

// Diff lists the changed addresses of kind in ascending order.
func (m *Mirror) Diff(kind models.RegisterKind) ([]models.RegisterChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	space, err := m.spaceLocked(kind)
	if err != nil {
		return nil, err
	}

	return space.Diff(), nil
}

// PrepareWrite snapshots the current diff for sending. It returns a nil Batch
// when there is nothing to write.
func (m *Mirror) PrepareWrite(kind models.RegisterKind) (*Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	space, err := m.spaceLocked(kind)
	if err != nil {
		return nil, err
	}

	changes := space.Diff()
	if len(changes) == 0 {
		return nil, nil
	}

	m.seq[kind]++

	return &Batch{
		Kind:     kind,
		ServerID: m.serverID,
		Changes:  changes,
		seq:      m.seq[kind],
	}, nil
}

// Commit records a successfully written batch in the baseline. Only the
// addresses in the batch are updated.
func (m *Mirror) Commit(b *Batch) error {
	if b == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	space, err := m.spaceLocked(b.Kind)
	if err != nil {
		return err
	}

	if m.seq[b.Kind] != b.seq {
		m.logger.Debug().Str("kind", string(b.Kind)).Str("server_id", b.ServerID).Msg("Dropping superseded write")

		return ErrSuperseded
	}

	return space.Commit(b.Changes)
}

// Write pushes the current diff of kind as one batch and commits it.
// written is 0, with no request made, when nothing changed.
func (m *Mirror) Write(ctx context.Context, kind models.RegisterKind) (written int, err error) {
	batch, err := m.PrepareWrite(kind)
	if err != nil || batch == nil {
		return 0, err
	}

	if err := m.client.WriteRegisters(ctx, batch.ServerID, kind, batch.Changes); err != nil {
		return 0, err
	}

	if err := m.Commit(batch); err != nil {
		return 0, err
	}

	return len(batch.Changes), nil
}

func (m *Mirror) spaceLocked(kind models.RegisterKind) (*Space, error) {
	space, ok := m.spaces[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return space, nil
}
