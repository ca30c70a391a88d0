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

package registers

import "errors"

var (
	// ErrSuperseded is returned when a newer operation on the same space (or a
	// rebuild) started while a request was in flight. Its result is dropped.
	ErrSuperseded = errors.New("superseded by a newer request")

	ErrAddressOutOfRange = errors.New("address out of range")
	ErrKindMismatch      = errors.New("value kind does not match register space")
	ErrSizeMismatch      = errors.New("gateway returned the wrong number of values")
	ErrUnknownKind       = errors.New("unknown register kind")
)
