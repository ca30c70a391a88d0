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

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RegisterKind names one of the two writable Modbus address spaces.
type RegisterKind string

const (
	KindCoils   RegisterKind = "coils"
	KindHolding RegisterKind = "holding"
)

// RegisterKinds lists every kind in display order.
var RegisterKinds = []RegisterKind{KindCoils, KindHolding}

// MaxRegisterValue is the largest value a holding register can hold.
const MaxRegisterValue = math.MaxUint16

// ParseRegisterKind accepts the canonical names plus a few operator aliases.
func ParseRegisterKind(s string) (RegisterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coils", "coil", "co":
		return KindCoils, nil
	case "holding", "hr", "holding-registers", "registers":
		return KindHolding, nil
	}

	return "", fmt.Errorf("%w: %q", errUnknownKind, s)
}

// Valid reports whether k is one of the known kinds.
func (k RegisterKind) Valid() bool {
	return k == KindCoils || k == KindHolding
}

// Noun is the human label used in status messages ("No coils to read.").
func (k RegisterKind) Noun() string {
	if k == KindHolding {
		return "holding registers"
	}

	return string(k)
}

// RegisterValue is a tagged value: a bit for coils, a 16-bit word for holding
// registers. The zero RegisterValue has no kind and encodes as null.
// Values are comparable with ==.
type RegisterValue struct {
	kind RegisterKind
	bit  bool
	word uint16
}

// Bool builds a coil value.
func Bool(v bool) RegisterValue {
	return RegisterValue{kind: KindCoils, bit: v}
}

// U16 builds a holding register value.
func U16(v uint16) RegisterValue {
	return RegisterValue{kind: KindHolding, word: v}
}

// ZeroValue is the value a freshly rebuilt space is filled with.
func ZeroValue(kind RegisterKind) RegisterValue {
	if kind == KindHolding {
		return U16(0)
	}

	return Bool(false)
}

func (v RegisterValue) Kind() RegisterKind { return v.kind }
func (v RegisterValue) Bool() bool         { return v.bit }
func (v RegisterValue) U16() uint16        { return v.word }

func (v RegisterValue) String() string {
	switch v.kind {
	case KindCoils:
		return strconv.FormatBool(v.bit)
	case KindHolding:
		return strconv.FormatUint(uint64(v.word), 10)
	default:
		return "<nil>"
	}
}

// MarshalJSON writes coils as JSON booleans and holding registers as numbers.
func (v RegisterValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindCoils:
		return json.Marshal(v.bit)
	case KindHolding:
		return json.Marshal(v.word)
	default:
		return []byte("null"), nil
	}
}

// ParseValue converts operator text into a value of the given kind, enforcing
// the 0..65535 range for holding registers.
func ParseValue(kind RegisterKind, raw string) (RegisterValue, error) {
	text := strings.TrimSpace(raw)

	switch kind {
	case KindCoils:
		switch strings.ToLower(text) {
		case "1", "true", "on", "t", "yes":
			return Bool(true), nil
		case "0", "false", "off", "f", "no":
			return Bool(false), nil
		}

		return RegisterValue{}, newValidationError("coil value", raw, "expected true/false or 1/0")
	case KindHolding:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return RegisterValue{}, newValidationError("holding value", raw, "expected an integer")
		}

		if n < 0 || n > MaxRegisterValue {
			return RegisterValue{}, newValidationError("holding value", raw,
				fmt.Sprintf("must be between 0 and %d", MaxRegisterValue))
		}

		return U16(uint16(n)), nil
	}

	return RegisterValue{}, fmt.Errorf("%w: %q", errUnknownKind, kind)
}

// DecodeValue coerces a JSON value coming over the wire into kind. Coils accept
// booleans or the numbers 0/1; holding registers accept integers in 0..65535.
func DecodeValue(kind RegisterKind, raw json.RawMessage) (RegisterValue, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return RegisterValue{}, newValidationError(string(kind)+" value", string(raw), "malformed JSON")
	}

	switch kind {
	case KindCoils:
		return decodeCoil(v, raw)
	case KindHolding:
		return decodeHolding(v, raw)
	}

	return RegisterValue{}, fmt.Errorf("%w: %q", errUnknownKind, kind)
}

func decodeCoil(v interface{}, raw json.RawMessage) (RegisterValue, error) {
	switch value := v.(type) {
	case bool:
		return Bool(value), nil
	case json.Number:
		switch value.String() {
		case "0":
			return Bool(false), nil
		case "1":
			return Bool(true), nil
		}
	}

	return RegisterValue{}, newValidationError("coil value", string(raw), "expected a boolean or 0/1")
}

func decodeHolding(v interface{}, raw json.RawMessage) (RegisterValue, error) {
	number, ok := v.(json.Number)
	if !ok {
		return RegisterValue{}, newValidationError("holding value", string(raw), "expected an integer")
	}

	n, err := number.Int64()
	if err != nil {
		return RegisterValue{}, newValidationError("holding value", string(raw), "expected an integer")
	}

	if n < 0 || n > MaxRegisterValue {
		return RegisterValue{}, newValidationError("holding value", string(raw),
			fmt.Sprintf("must be between 0 and %d", MaxRegisterValue))
	}

	return U16(uint16(n)), nil
}

// DecodeValues coerces a whole read response.
func DecodeValues(kind RegisterKind, raw []json.RawMessage) ([]RegisterValue, error) {
	values := make([]RegisterValue, len(raw))

	for i, item := range raw {
		v, err := DecodeValue(kind, item)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}

		values[i] = v
	}

	return values, nil
}

// RegisterChange is one {addr, value} pair of a write request.
type RegisterChange struct {
	Addr  int           `json:"addr"`
	Value RegisterValue `json:"value"`
}

// RawRegisterChange is a RegisterChange before its value has been coerced.
type RawRegisterChange struct {
	Addr  int             `json:"addr"`
	Value json.RawMessage `json:"value"`
}

// RegisterValuesResponse is the body of a successful read.
type RegisterValuesResponse struct {
	Values []RegisterValue `json:"values"`
}

// RawRegisterValuesResponse is a read body as received from the gateway.
type RawRegisterValuesResponse struct {
	Values []json.RawMessage `json:"values"`
}

// SingleWriteRequest is the body of PUT /api/servers/{id}/{kind}/{addr}.
type SingleWriteRequest struct {
	Value RegisterValue `json:"value"`
}

// RawSingleWriteRequest is a SingleWriteRequest before coercion.
type RawSingleWriteRequest struct {
	Value json.RawMessage `json:"value"`
}

// BatchWriteRequest is the body of PUT /api/servers/{id}/{kind}.
type BatchWriteRequest struct {
	Values []RegisterChange `json:"values"`
}

// RawBatchWriteRequest is a BatchWriteRequest before coercion.
type RawBatchWriteRequest struct {
	Values []RawRegisterChange `json:"values"`
}

// WriteResponse acknowledges a write.
type WriteResponse struct {
	Status  string `json:"status"`
	Written int    `json:"written,omitempty"`
}
