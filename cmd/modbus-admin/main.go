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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/greenliquidlight/modservice/pkg/cli"
	"github.com/greenliquidlight/modservice/pkg/config"
	"github.com/greenliquidlight/modservice/pkg/controller"
	"github.com/greenliquidlight/modservice/pkg/lifecycle"
	"github.com/greenliquidlight/modservice/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cmdCfg, err := cli.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) || (err == nil && cmdCfg.Help) {
		cli.ShowHelp()

		return nil
	}

	if err != nil {
		return err
	}

	if cmdCfg.Version {
		fmt.Println("modbus-admin " + version.GetFullVersion())

		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := cli.DefaultConfig()
	if err := config.NewConfig(cli.LoaderLogger(cmdCfg)).LoadAndValidate(ctx, cmdCfg.ConfigFile, cfg); err != nil {
		return err
	}

	if cmdCfg.GatewayURL != "" {
		cfg.GatewayURL = cmdCfg.GatewayURL

		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("modbus-admin", cfg.Logging)
	if err != nil {
		return err
	}

	client := cfg.NewClient(lifecycle.Component(mainLogger, "gateway"))

	if cmdCfg.SubCmd != "" {
		return cli.RunSubcommand(ctx, cmdCfg, client, mainLogger, os.Stdout)
	}

	return cli.RunInteractive(ctx, controller.New(client, mainLogger), cfg)
}
