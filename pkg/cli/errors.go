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

import "errors"

var (
	errUnknownSubcommand = errors.New("unknown subcommand")
	errServerRequired    = errors.New("-server is required")
	errKindRequired      = errors.New("-kind must be coils or holding")
	errSetRequired       = errors.New("-set requires at least one addr=value pair")
	errInvalidSetPair    = errors.New("invalid addr=value pair")
	errDuplicateAddr     = errors.New("address given more than once")
	errInvalidGateway    = errors.New("gateway_url must be an http or https URL")
	errInvalidTimeout    = errors.New("timeout must be positive")
	errRegisterOp        = errors.New("register operation failed")
)
