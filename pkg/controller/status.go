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

package controller

import (
	"strconv"

	"github.com/greenliquidlight/modservice/pkg/models"
)

// Level classifies a panel status line.
type Level int

const (
	LevelNone Level = iota
	// LevelGuidance is a precondition the operator has to satisfy first. It
	// is not an error.
	LevelGuidance
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelGuidance:
		return "guidance"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "none"
	}
}

// Status is the message shown under a register panel.
type Status struct {
	Kind    models.RegisterKind
	Level   Level
	Message string
}

const (
	MsgSelectServer = "Select a server first."
	MsgLoaded       = "Loaded."
	MsgNoChanges    = "No changes to write."
)

func nothingTo(kind models.RegisterKind, verb string) string {
	return "No " + kind.Noun() + " to " + verb + "."
}

func wrote(n int) string {
	if n == 1 {
		return "Wrote 1 value."
	}

	return "Wrote " + strconv.Itoa(n) + " values."
}
