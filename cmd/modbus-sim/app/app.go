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

// Package app wires the modbus-sim gateway: the simulator manager behind the
// REST API.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/greenliquidlight/modservice/pkg/config"
	"github.com/greenliquidlight/modservice/pkg/lifecycle"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/simulator"
	"github.com/greenliquidlight/modservice/pkg/simulator/api"
	"github.com/greenliquidlight/modservice/pkg/version"
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// Run serves the gateway until ctx is cancelled, then stops the API and every
// simulated server within the configured shutdown timeout.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := simulator.DefaultConfig()
	if err := config.NewConfig(nil).LoadAndValidate(ctx, opts.ConfigPath, cfg); err != nil {
		return err
	}

	if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("modbus-sim", cfg.Logging)
	if err != nil {
		return err
	}

	managerOptions := append(cfg.ManagerOptions(), simulator.WithLogger(lifecycle.Component(mainLogger, "simulator")))

	manager, err := simulator.NewManager(managerOptions...)
	if err != nil {
		return err
	}

	apiServer := api.NewAPIServer(manager, cfg.CORS, api.WithLogger(lifecycle.Component(mainLogger, "api")))

	errCh := make(chan error, 1)

	go func() {
		mainLogger.Info().
			Str("listen_addr", cfg.ListenAddr).
			Str("version", version.GetFullVersion()).
			Bool("modbus", !cfg.DisableModbus).
			Msg("Starting gateway API server")

		errCh <- apiServer.Start(cfg.ListenAddr)
	}()

	var serveErr error

	select {
	case serveErr = <-errCh:
		if serveErr != nil {
			mainLogger.Error().Err(serveErr).Msg("Gateway API server error")
		}
	case <-ctx.Done():
		mainLogger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout))
	defer cancel()

	return errors.Join(serveErr, shutdown(shutdownCtx, apiServer, manager, mainLogger))
}

func shutdown(ctx context.Context, apiServer *api.APIServer, manager *simulator.Manager, log logger.Logger) error {
	var errs []error

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Error shutting down API server")

		errs = append(errs, err)
	}

	if err := manager.StopAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Error stopping simulated servers")

		errs = append(errs, err)
	}

	log.Info().Msg("Gateway stopped")

	return errors.Join(errs...)
}
