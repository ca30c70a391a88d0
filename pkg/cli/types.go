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

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
)

// CmdConfig holds the parsed command line.
type CmdConfig struct {
	Help       bool
	Version    bool
	SubCmd     string
	Args       []string
	ConfigFile string
	GatewayURL string
	ServerID   string
	Kind       string
	Set        string
	JSON       bool
	Spec       models.ServerSpec
}

// Config is the modbus-admin configuration file.
type Config struct {
	GatewayURL string          `json:"gateway_url"`
	Timeout    models.Duration `json:"timeout"`
	Logging    *logger.Config  `json:"logging"`
}

// logStyles defines styles for subcommand output.
type logStyles struct {
	info, success, warning, error lipgloss.Style
}

// tuiStyles are the lipgloss styles of the interactive view.
type tuiStyles struct {
	title, pane, focusedPane, card, activeCard, header, dirty, cursor lipgloss.Style
	muted, guidance, success, error, alert, hint lipgloss.Style
}
