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
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/greenliquidlight/modservice/pkg/controller"
	"github.com/greenliquidlight/modservice/pkg/gateway"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
)

const (
	cmdServers = "servers"
	cmdCreate  = "create"
	cmdRead    = "read"
	cmdWrite   = "write"
)

// SubcommandHandler parses the flags of one subcommand into cfg.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// ServersHandler handles flags for the servers subcommand.
type ServersHandler struct{}

// CreateHandler handles flags for the create subcommand.
type CreateHandler struct{}

// ReadHandler handles flags for the read subcommand.
type ReadHandler struct{}

// WriteHandler handles flags for the write subcommand.
type WriteHandler struct{}

func subcommands() map[string]SubcommandHandler {
	return map[string]SubcommandHandler{
		cmdServers: ServersHandler{},
		cmdCreate:  CreateHandler{},
		cmdRead:    ReadHandler{},
		cmdWrite:   WriteHandler{},
	}
}

// ParseFlags parses the global flags and, when present, a subcommand with its
// own flags. args excludes the program name.
func ParseFlags(args []string) (*CmdConfig, error) {
	fs := flag.NewFlagSet("modbus-admin", flag.ContinueOnError)
	help := fs.Bool("help", false, "show help message")
	showVersion := fs.Bool("version", false, "print version and exit")
	configFile := fs.String("config", "", "path to modbus-admin config file")
	gatewayURL := fs.String("gateway", "", "gateway base URL, overrides the config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &CmdConfig{
		Help:       *help,
		Version:    *showVersion,
		ConfigFile: *configFile,
		GatewayURL: *gatewayURL,
		Args:       fs.Args(),
		Spec:       models.DefaultServerSpec(),
	}

	if len(cfg.Args) == 0 {
		return cfg, nil
	}

	cfg.SubCmd = cfg.Args[0]

	handler, exists := subcommands()[cfg.SubCmd]
	if !exists {
		return cfg, fmt.Errorf("%w: %s", errUnknownSubcommand, cfg.SubCmd)
	}

	if err := handler.Parse(cfg.Args[1:], cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Parse handles the servers subcommand flags.
func (ServersHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet(cmdServers, flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print JSON")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing servers flags: %w", err)
	}

	cfg.JSON = *asJSON

	return nil
}

// Parse handles the create subcommand flags.
func (CreateHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet(cmdCreate, flag.ContinueOnError)
	port := fs.Int("port", cfg.Spec.Port, "Modbus TCP port")
	unitID := fs.Int("unit-id", cfg.Spec.UnitID, "Modbus unit id (1-247)")
	coils := fs.Int("coils", cfg.Spec.CoilsSize, "number of coils")
	holding := fs.Int("holding", cfg.Spec.HoldingSize, "number of holding registers")
	asJSON := fs.Bool("json", false, "print JSON")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing create flags: %w", err)
	}

	cfg.Spec = models.ServerSpec{
		Port:        *port,
		UnitID:      *unitID,
		CoilsSize:   *coils,
		HoldingSize: *holding,
	}
	cfg.JSON = *asJSON

	return cfg.Spec.Validate()
}

// Parse handles the read subcommand flags.
func (ReadHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet(cmdRead, flag.ContinueOnError)
	server := fs.String("server", "", "server id")
	kind := fs.String("kind", "", "register kind: coils or holding")
	asJSON := fs.Bool("json", false, "print JSON")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing read flags: %w", err)
	}

	cfg.ServerID = *server
	cfg.Kind = *kind
	cfg.JSON = *asJSON

	return validateTarget(cfg)
}

// Parse handles the write subcommand flags.
func (WriteHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet(cmdWrite, flag.ContinueOnError)
	server := fs.String("server", "", "server id")
	kind := fs.String("kind", "", "register kind: coils or holding")
	set := fs.String("set", "", "comma separated addr=value pairs")
	asJSON := fs.Bool("json", false, "print JSON")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing write flags: %w", err)
	}

	cfg.ServerID = *server
	cfg.Kind = *kind
	cfg.Set = *set
	cfg.JSON = *asJSON

	if err := validateTarget(cfg); err != nil {
		return err
	}

	_, err := parseSetPairs(cfg.Set)

	return err
}

func validateTarget(cfg *CmdConfig) error {
	if cfg.ServerID == "" {
		return errServerRequired
	}

	if _, err := models.ParseRegisterKind(cfg.Kind); err != nil {
		return fmt.Errorf("%w: %q", errKindRequired, cfg.Kind)
	}

	return nil
}

// RunSubcommand executes cfg.SubCmd against the gateway and prints the result to out.
func RunSubcommand(ctx context.Context, cfg *CmdConfig, client gateway.Client, log logger.Logger, out io.Writer) error {
	switch cfg.SubCmd {
	case cmdServers:
		return RunServers(ctx, client, out, cfg.JSON)
	case cmdCreate:
		return RunCreate(ctx, controller.New(client, log), cfg.Spec, out, cfg.JSON)
	case cmdRead:
		return RunRead(ctx, controller.New(client, log), cfg, out)
	case cmdWrite:
		return RunWrite(ctx, controller.New(client, log), cfg, out)
	default:
		return fmt.Errorf("%w: %s", errUnknownSubcommand, cfg.SubCmd)
	}
}

// RunServers lists the gateway's servers.
func RunServers(ctx context.Context, client gateway.Client, out io.Writer, asJSON bool) error {
	servers, err := client.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("listing servers: %w", err)
	}

	if asJSON {
		if servers == nil {
			servers = []models.ServerRecord{}
		}

		return writeJSON(out, servers)
	}

	if len(servers) == 0 {
		_, err := fmt.Fprintln(out, newLogStyles().info.Render("No servers."))

		return err
	}

	return printServers(out, servers)
}

// RunCreate provisions a server through ctrl.
func RunCreate(ctx context.Context, ctrl *controller.Controller, spec models.ServerSpec, out io.Writer, asJSON bool) error {
	rec, err := ctrl.CreateServer(ctx, spec)
	if rec == nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if asJSON {
		if jsonErr := writeJSON(out, rec); jsonErr != nil {
			return jsonErr
		}
	} else {
		fmt.Fprintln(out, newLogStyles().success.Render("[SUCCESS] Created server "+rec.ID+" on "+rec.Endpoint()))
	}

	// the server exists even when the follow-up refresh failed
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return nil
}

// RunRead loads one register space of cfg.ServerID and prints its values.
func RunRead(ctx context.Context, ctrl *controller.Controller, cfg *CmdConfig, out io.Writer) error {
	kind, err := openSession(ctx, ctrl, cfg)
	if err != nil {
		return err
	}

	st, err := ctrl.Read(ctx, kind)
	if err != nil {
		return fmt.Errorf("%w: %s", errRegisterOp, st.Message)
	}

	snap := ctrl.Snapshot(kind)

	if cfg.JSON {
		values := snap.Baseline
		if values == nil {
			values = []models.RegisterValue{}
		}

		return writeJSON(out, models.RegisterValuesResponse{Values: values})
	}

	if st.Level == controller.LevelGuidance {
		_, err := fmt.Fprintln(out, newLogStyles().warning.Render(st.Message))

		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tVALUE")

	for addr, v := range snap.Baseline {
		fmt.Fprintf(tw, "%d\t%s\n", addr, v)
	}

	return tw.Flush()
}

// RunWrite loads the current values, records the -set pairs as edits and
// pushes only the addresses whose value differs.
func RunWrite(ctx context.Context, ctrl *controller.Controller, cfg *CmdConfig, out io.Writer) error {
	pairs, err := parseSetPairs(cfg.Set)
	if err != nil {
		return err
	}

	kind, err := openSession(ctx, ctrl, cfg)
	if err != nil {
		return err
	}

	if st, err := ctrl.Read(ctx, kind); err != nil {
		return fmt.Errorf("%w: %s", errRegisterOp, st.Message)
	}

	for _, p := range pairs {
		if _, err := ctrl.RecordEdit(kind, p.addr, p.raw); err != nil {
			return fmt.Errorf("address %d: %w", p.addr, err)
		}
	}

	changes, err := ctrl.Diff(kind)
	if err != nil {
		return err
	}

	st, err := ctrl.Write(ctx, kind)
	if err != nil {
		return fmt.Errorf("%w: %s", errRegisterOp, st.Message)
	}

	if cfg.JSON {
		return writeJSON(out, models.WriteResponse{Status: "ok", Written: len(changes)})
	}

	styles := newLogStyles()

	if len(changes) == 0 {
		_, err := fmt.Fprintln(out, styles.warning.Render(st.Message))

		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tVALUE")

	for _, c := range changes {
		fmt.Fprintf(tw, "%d\t%s\n", c.Addr, c.Value)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, styles.success.Render(st.Message))

	return err
}

// openSession loads the directory and selects cfg.ServerID.
func openSession(ctx context.Context, ctrl *controller.Controller, cfg *CmdConfig) (models.RegisterKind, error) {
	kind, err := models.ParseRegisterKind(cfg.Kind)
	if err != nil {
		return "", fmt.Errorf("%w: %q", errKindRequired, cfg.Kind)
	}

	if err := ctrl.Init(ctx); err != nil {
		return "", fmt.Errorf("listing servers: %w", err)
	}

	if err := ctrl.SelectServer(cfg.ServerID); err != nil {
		return "", err
	}

	return kind, nil
}

func printServers(out io.Writer, servers []models.ServerRecord) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENDPOINT\tUNIT\tCOILS\tHOLDING\tSTATUS")

	for i := range servers {
		s := &servers[i]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			s.ID, s.Endpoint(), s.UnitID, s.CoilsSize, s.HoldingSize, s.Status)
	}

	return tw.Flush()
}
