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
	"fmt"
	"net/url"
	"time"

	"github.com/greenliquidlight/modservice/pkg/gateway"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
	"github.com/greenliquidlight/modservice/pkg/version"
)

const defaultTimeout = 15 * time.Second

// LoaderLogger picks the logger handed to the config loader. The interactive
// console gets a silent one. Subcommands get nil so the loader falls back to
// warnings on stderr.
func LoaderLogger(cmdCfg *CmdConfig) logger.Logger {
	if cmdCfg == nil || cmdCfg.SubCmd == "" {
		return logger.NewTestLogger()
	}

	return nil
}

// DefaultConfig points at a gateway on localhost. Logs are discarded so they
// never land on the terminal the TUI draws on.
func DefaultConfig() *Config {
	return &Config{
		GatewayURL: gateway.DefaultBaseURL,
		Timeout:    models.Duration(defaultTimeout),
		Logging: &logger.Config{
			Level:  "info",
			Output: "discard",
		},
	}
}

// Validate normalises the gateway URL and fills unset fields.
func (c *Config) Validate() error {
	c.GatewayURL = gateway.NormaliseBaseURL(c.GatewayURL)

	u, err := url.Parse(c.GatewayURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", errInvalidGateway, c.GatewayURL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s", errInvalidTimeout, time.Duration(c.Timeout))
	}

	if c.Timeout == 0 {
		c.Timeout = models.Duration(defaultTimeout)
	}

	if c.Logging == nil {
		c.Logging = DefaultConfig().Logging
	}

	return nil
}

// NewClient builds the gateway client described by c.
func (c *Config) NewClient(log logger.Logger) *gateway.HTTPClient {
	return gateway.NewHTTPClient(c.GatewayURL,
		gateway.WithTimeout(time.Duration(c.Timeout)),
		gateway.WithLogger(log),
		gateway.WithUserAgent(version.UserAgent("modbus-admin")),
	)
}
