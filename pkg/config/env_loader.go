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

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/greenliquidlight/modservice/pkg/logger"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")
)

// EnvConfigLoader loads configuration from environment variables named after
// the json tags, upper-cased and joined by "_" for nested structs:
// MODSERVICE_LOGGING_LEVEL sets cfg.Logging.Level. <prefix>CONFIG_JSON, when
// set, holds the whole config as JSON and wins over individual variables.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader by reading from environment variables.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	if raw := os.Getenv(e.prefix + "CONFIG_JSON"); raw != "" {
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return fmt.Errorf("failed to unmarshal %sCONFIG_JSON: %w", e.prefix, err)
		}

		e.logger.Debug().Msg("Loaded configuration from CONFIG_JSON environment variable")

		return nil
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	return e.loadStruct(v, e.prefix)
}

func (e *EnvConfigLoader) loadStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		name, ok := jsonName(t.Field(i))
		if !ok {
			continue
		}

		envName := prefix + strings.ToUpper(name)

		if err := e.loadField(field, envName); err != nil {
			return err
		}
	}

	return nil
}

// loadField sets field from envName, recursing into nested structs. Pointer
// structs are only allocated when one of their variables is present.
func (e *EnvConfigLoader) loadField(field reflect.Value, envName string) error {
	raw, present := os.LookupEnv(envName)

	if present {
		if err := setFromString(field, raw); err != nil {
			return fmt.Errorf("%s: %w", envName, err)
		}

		e.logger.Debug().Str("env", envName).Msg("Loaded value from environment variable")

		return nil
	}

	switch {
	case field.Kind() == reflect.Struct && !implementsUnmarshaler(field):
		return e.loadStruct(field, envName+"_")
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if !hasPrefixedEnv(envName + "_") {
			return nil
		}

		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}

		return e.loadStruct(field.Elem(), envName+"_")
	}

	return nil
}

// setFromString converts raw into field's type. Types with their own JSON
// decoding (durations, for example) get raw as a JSON string first.
func setFromString(field reflect.Value, raw string) error {
	if implementsUnmarshaler(field) {
		target := field.Addr().Interface()

		if err := json.Unmarshal([]byte(strconv.Quote(raw)), target); err == nil {
			return nil
		}

		return json.Unmarshal([]byte(raw), target)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", raw, err)
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", raw, err)
		}

		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q: %w", raw, err)
		}

		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float %q: %w", raw, err)
		}

		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(raw, ",")
			out := reflect.MakeSlice(field.Type(), 0, len(parts))

			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = reflect.Append(out, reflect.ValueOf(p).Convert(field.Type().Elem()))
				}
			}

			field.Set(out)

			return nil
		}

		return json.Unmarshal([]byte(raw), field.Addr().Interface())
	default:
		return json.Unmarshal([]byte(raw), field.Addr().Interface())
	}

	return nil
}

func implementsUnmarshaler(field reflect.Value) bool {
	if !field.CanAddr() {
		return false
	}

	_, ok := field.Addr().Interface().(json.Unmarshaler)

	return ok
}

func jsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return "", false
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return "", false
	}

	return name, true
}

func hasPrefixedEnv(prefix string) bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}

	return false
}
