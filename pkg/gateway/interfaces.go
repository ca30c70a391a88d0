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

//go:generate mockgen -destination=mock_gateway.go -package=gateway github.com/greenliquidlight/modservice/pkg/gateway Client

package gateway

import (
	"context"

	"github.com/greenliquidlight/modservice/pkg/models"
)

// Client is the Remote Gateway: server CRUD plus per-server register access.
type Client interface {
	ListServers(ctx context.Context) ([]models.ServerRecord, error)
	CreateServer(ctx context.Context, spec models.ServerSpec) (*models.ServerRecord, error)
	ReadRegisters(ctx context.Context, serverID string, kind models.RegisterKind, addr, count int) ([]models.RegisterValue, error)
	WriteRegister(ctx context.Context, serverID string, kind models.RegisterKind, addr int, value models.RegisterValue) error
	WriteRegisters(ctx context.Context, serverID string, kind models.RegisterKind, changes []models.RegisterChange) error
}
