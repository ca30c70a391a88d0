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

package simulator

import "errors"

var (
	ErrServerNotFound  = errors.New("server not found")
	ErrOutOfRange      = errors.New("address range out of bounds")
	ErrIPPoolExhausted = errors.New("loopback IP pool exhausted (127/8)")
	ErrInvalidIPPool   = errors.New("ip pool start must be an IPv4 address in 127/8")
	// ErrStartFailed wraps a failure to bind the Modbus TCP listener, most
	// often a port already in use on that address.
	ErrStartFailed = errors.New("failed to start modbus server")
	ErrUnknownKind = errors.New("unknown register kind")
)
