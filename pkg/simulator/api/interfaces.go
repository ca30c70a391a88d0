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
	"github.com/greenliquidlight/modservice/pkg/models"
)

// ServerManager is the part of *simulator.Manager the REST API needs.
type ServerManager interface {
	CreateAndStart(spec models.ServerSpec) (models.ServerRecord, error)
	List() []models.ServerRecord
	ReadRegisters(id string, kind models.RegisterKind, addr, count int) ([]models.RegisterValue, error)
	WriteRegisters(id string, kind models.RegisterKind, changes []models.RegisterChange) error
}
