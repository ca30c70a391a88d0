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

// Package controller orchestrates reads and writes between the register
// mirror of the active server and the gateway, and reports per-panel status.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/greenliquidlight/modservice/pkg/directory"
	"github.com/greenliquidlight/modservice/pkg/gateway"
	"github.com/greenliquidlight/modservice/pkg/lifecycle"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
	"github.com/greenliquidlight/modservice/pkg/registers"
)

// Controller owns the directory and the mirror of the active server. The
// mirror is rebuilt synchronously on every selection event.
type Controller struct {
	directory *directory.Directory
	mirror    *registers.Mirror
	logger    logger.Logger

	mu     sync.RWMutex
	status map[models.RegisterKind]Status
}

func New(client gateway.Client, log logger.Logger) *Controller {
	if log == nil {
		log = logger.NewTestLogger()
	}

	c := &Controller{
		directory: directory.New(client, lifecycle.Component(log, "directory")),
		mirror:    registers.NewMirror(client, lifecycle.Component(log, "registers")),
		logger:    log,
		status:    make(map[models.RegisterKind]Status, len(models.RegisterKinds)),
	}

	c.directory.OnSelect(c.rebuild)

	return c
}

// Init loads the directory. It is the same as Refresh.
func (c *Controller) Init(ctx context.Context) error {
	return c.Refresh(ctx)
}

func (c *Controller) Refresh(ctx context.Context) error {
	return c.directory.Refresh(ctx)
}

// CreateServer validates spec locally, then asks the gateway to create it.
// The new server becomes active.
func (c *Controller) CreateServer(ctx context.Context, spec models.ServerSpec) (*models.ServerRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return c.directory.Create(ctx, spec)
}

func (c *Controller) SelectServer(id string) error {
	return c.directory.Select(id)
}

func (c *Controller) Servers() []models.ServerRecord {
	return c.directory.Servers()
}

func (c *Controller) Active() (models.ServerRecord, bool) {
	return c.directory.Active()
}

// Read pulls the whole space of kind from the gateway.
func (c *Controller) Read(ctx context.Context, kind models.RegisterKind) (Status, error) {
	if _, ok := c.directory.Active(); !ok {
		return c.setStatus(kind, LevelGuidance, MsgSelectServer), nil
	}

	if c.mirror.Size(kind) == 0 {
		return c.setStatus(kind, LevelGuidance, nothingTo(kind, "read")), nil
	}

	if _, err := c.mirror.Load(ctx, kind); err != nil {
		return c.fail(kind, "read", err)
	}

	return c.setStatus(kind, LevelSuccess, MsgLoaded), nil
}

// Write pushes only the changed addresses of kind as a single batch. No
// request is made when nothing changed.
func (c *Controller) Write(ctx context.Context, kind models.RegisterKind) (Status, error) {
	if _, ok := c.directory.Active(); !ok {
		return c.setStatus(kind, LevelGuidance, MsgSelectServer), nil
	}

	if c.mirror.Size(kind) == 0 {
		return c.setStatus(kind, LevelGuidance, nothingTo(kind, "write")), nil
	}

	written, err := c.mirror.Write(ctx, kind)
	if err != nil {
		return c.fail(kind, "write", err)
	}

	if written == 0 {
		return c.setStatus(kind, LevelGuidance, MsgNoChanges), nil
	}

	c.logger.Info().Str("kind", string(kind)).Int("written", written).Msg("Registers written")

	return c.setStatus(kind, LevelSuccess, wrote(written)), nil
}

// RecordEdit parses raw operator input for addr and stores it as an edit.
func (c *Controller) RecordEdit(kind models.RegisterKind, addr int, raw string) (models.RegisterValue, error) {
	return c.mirror.RecordRawEdit(kind, addr, raw)
}

// SetEdit stores an already typed edit for addr.
func (c *Controller) SetEdit(kind models.RegisterKind, addr int, value models.RegisterValue) error {
	return c.mirror.RecordEdit(kind, addr, value)
}

// Diff lists the pending changes of kind.
func (c *Controller) Diff(kind models.RegisterKind) ([]models.RegisterChange, error) {
	return c.mirror.Diff(kind)
}

func (c *Controller) Snapshot(kind models.RegisterKind) registers.Snapshot {
	return c.mirror.Snapshot(kind)
}

// Status returns the last status reported for kind.
func (c *Controller) Status(kind models.RegisterKind) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if st, ok := c.status[kind]; ok {
		return st
	}

	return Status{Kind: kind}
}

func (c *Controller) rebuild(active *models.ServerRecord) {
	c.mirror.Rebuild(active)

	c.mu.Lock()
	clear(c.status)
	c.mu.Unlock()
}

// fail reports err verbatim. A superseded result leaves the status alone.
func (c *Controller) fail(kind models.RegisterKind, op string, err error) (Status, error) {
	if errors.Is(err, registers.ErrSuperseded) {
		return c.Status(kind), err
	}

	c.logger.Warn().Err(err).Str("kind", string(kind)).Str("op", op).Msg("Register operation failed")

	return c.setStatus(kind, LevelError, detail(err)), fmt.Errorf("%s %s: %w", op, kind, err)
}

func (c *Controller) setStatus(kind models.RegisterKind, level Level, msg string) Status {
	st := Status{Kind: kind, Level: level, Message: msg}

	c.mu.Lock()
	c.status[kind] = st
	c.mu.Unlock()

	return st
}

// detail is the text shown to the operator: the gateway's response body when
// there is one, otherwise the error itself.
func detail(err error) string {
	var gErr *gateway.GatewayError
	if errors.As(err, &gErr) {
		return gErr.Error()
	}

	return err.Error()
}
