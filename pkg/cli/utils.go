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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenliquidlight/modservice/pkg/gateway"
)

// setPair is one addr=value item of the -set flag. The value stays raw so
// that it is parsed against the register kind by the mirror.
type setPair struct {
	addr int
	raw  string
}

// parseSetPairs splits "0=1,4=true" into pairs. Each address may appear once.
func parseSetPairs(s string) ([]setPair, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errSetRequired
	}

	items := strings.Split(s, ",")
	pairs := make([]setPair, 0, len(items))
	seen := make(map[int]struct{}, len(items))

	for _, item := range items {
		addrText, raw, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errInvalidSetPair, item)
		}

		addr, err := strconv.Atoi(strings.TrimSpace(addrText))
		if err != nil || addr < 0 {
			return nil, fmt.Errorf("%w: %q: address must be a non-negative integer", errInvalidSetPair, item)
		}

		if _, dup := seen[addr]; dup {
			return nil, fmt.Errorf("%w: %d", errDuplicateAddr, addr)
		}

		seen[addr] = struct{}{}

		pairs = append(pairs, setPair{addr: addr, raw: strings.TrimSpace(raw)})
	}

	return pairs, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// errorDetail is what the operator sees for err: the gateway's response body
// when the error came from the gateway.
func errorDetail(err error) string {
	var gErr *gateway.GatewayError
	if errors.As(err, &gErr) {
		return gErr.Error()
	}

	return err.Error()
}

func newLogStyles() logStyles {
	return logStyles{
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
	}
}
