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

// Package directory keeps the list of known servers and which one is active.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/greenliquidlight/modservice/pkg/gateway"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
)

var ErrUnknownServer = errors.New("unknown server")

// SelectionListener is told about every selection event. active is nil when
// the directory became empty.
type SelectionListener func(active *models.ServerRecord)

// Directory is the ordered server list plus the active selection.
type Directory struct {
	mu        sync.RWMutex
	client    gateway.Client
	logger    logger.Logger
	servers   []models.ServerRecord
	activeID  string
	listeners []SelectionListener
}

func New(client gateway.Client, log logger.Logger) *Directory {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Directory{
		client: client,
		logger: log,
	}
}

// OnSelect registers fn to run after each selection event, outside the lock.
func (d *Directory) OnSelect(fn SelectionListener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners = append(d.listeners, fn)
}

// Refresh replaces the server list with the gateway's and reconciles the
// active selection. On failure the previous list is kept and the error is
// returned.
func (d *Directory) Refresh(ctx context.Context) error {
	return d.refresh(ctx, "")
}

// refresh prefers candidate over the current selection when it is listed.
func (d *Directory) refresh(ctx context.Context, candidate string) error {
	servers, err := d.client.ListServers(ctx)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Failed to refresh server directory")

		return err
	}

	d.mu.Lock()

	previous := d.activeID

	want := previous
	if candidate != "" {
		want = candidate
	}

	d.servers = append([]models.ServerRecord(nil), servers...)
	d.activeID = reconcile(d.servers, want)

	changed := d.activeID != previous
	active := d.activeLocked()
	listeners := d.listeners

	d.mu.Unlock()

	d.logger.Debug().Int("servers", len(servers)).Str("active", activeIDOf(active)).Msg("Server directory refreshed")

	if changed {
		d.logger.Info().Str("previous", previous).Str("active", activeIDOf(active)).Msg("Active server changed")
		notify(listeners, active)
	}

	return nil
}

// Create provisions a server, makes it the selection candidate and refreshes.
// Nothing is added locally if the gateway rejects the request.
func (d *Directory) Create(ctx context.Context, spec models.ServerSpec) (*models.ServerRecord, error) {
	rec, err := d.client.CreateServer(ctx, spec)
	if err != nil {
		d.logger.Warn().Err(err).Int("port", spec.Port).Msg("Failed to create server")

		return nil, err
	}

	d.logger.Info().Str("id", rec.ID).Str("endpoint", rec.Endpoint()).Msg("Server created")

	if err := d.refresh(ctx, rec.ID); err != nil {
		return rec, fmt.Errorf("refresh after create: %w", err)
	}

	return rec, nil
}

// Select makes id the active server. Selecting always emits a selection
// event, even when id is already active.
func (d *Directory) Select(id string) error {
	d.mu.Lock()

	if indexOf(d.servers, id) < 0 {
		d.mu.Unlock()

		return fmt.Errorf("%w: %q", ErrUnknownServer, id)
	}

	d.activeID = id
	active := d.activeLocked()
	listeners := d.listeners

	d.mu.Unlock()

	d.logger.Info().Str("active", id).Msg("Server selected")
	notify(listeners, active)

	return nil
}

// Servers returns a copy of the list in creation order.
func (d *Directory) Servers() []models.ServerRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]models.ServerRecord(nil), d.servers...)
}

// Active returns the active record, if any.
func (d *Directory) Active() (models.ServerRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if rec := d.activeLocked(); rec != nil {
		return *rec, true
	}

	return models.ServerRecord{}, false
}

func (d *Directory) ActiveID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.activeID
}

func (d *Directory) activeLocked() *models.ServerRecord {
	i := indexOf(d.servers, d.activeID)
	if i < 0 {
		return nil
	}

	rec := d.servers[i]

	return &rec
}

// reconcile keeps id when it is still listed, otherwise falls back to the
// last server, or to none when the list is empty.
func reconcile(servers []models.ServerRecord, id string) string {
	if len(servers) == 0 {
		return ""
	}

	if id != "" && indexOf(servers, id) >= 0 {
		return id
	}

	return servers[len(servers)-1].ID
}

func indexOf(servers []models.ServerRecord, id string) int {
	if id == "" {
		return -1
	}

	for i := range servers {
		if servers[i].ID == id {
			return i
		}
	}

	return -1
}

func notify(listeners []SelectionListener, active *models.ServerRecord) {
	for _, fn := range listeners {
		fn(active)
	}
}

func activeIDOf(rec *models.ServerRecord) string {
	if rec == nil {
		return ""
	}

	return rec.ID
}
