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

import "fmt"

// ShowHelp prints usage for modbus-admin and its subcommands.
func ShowHelp() {
	fmt.Print(`modbus-admin: operator console for a Modbus server gateway

Usage:
  modbus-admin [options]                      launch the interactive console
  modbus-admin [options] <subcommand> [flags] run one operation and exit

Options:
  -config string    path to modbus-admin config file (JSON)
  -gateway string   gateway base URL (default "http://127.0.0.1:8000")
  -help             show this help message
  -version          print version and exit

Subcommands:
  servers           list the gateway's servers
  create            create and start a server
  read              print the values of one register space
  write             change registers; only values that differ are sent

Options for servers:
  -json             print JSON

Options for create:
  -port int         Modbus TCP port (default 1502)
  -unit-id int      unit id, 1-247 (default 1)
  -coils int        number of coils (default 100)
  -holding int      number of holding registers (default 2000)
  -json             print JSON

Options for read:
  -server string    server id
  -kind string      coils or holding
  -json             print JSON

Options for write:
  -server string    server id
  -kind string      coils or holding
  -set string       comma separated addr=value pairs
  -json             print JSON

Interactive keys:
  tab / shift+tab   switch pane
  up / down         move the cursor
  enter             select server, edit a holding register, toggle a coil
  space             toggle a coil
  r / w             read or write the focused register space
  n                 create a server
  R                 refresh the server list
  y                 copy the active server's ip:port
  q                 quit

Examples:
  # Launch the console against a remote gateway
  modbus-admin -gateway http://10.0.0.5:8000

  # Create a server with 16 coils
  modbus-admin create -port 1503 -coils 16

  # Read holding registers
  modbus-admin read -server 6f1c... -kind holding

  # Switch on coils 0 and 3
  modbus-admin write -server 6f1c... -kind coils -set 0=1,3=true
`)
}
