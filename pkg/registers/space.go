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

import (
	"fmt"

	"github.com/greenliquidlight/modservice/pkg/models"
)

// Space is one register address space [0, size) of the active server: the
// baseline confirmed by the gateway and the operator's pending edits.
// baseline and edits always have length size. Space is not safe for
// concurrent use; Mirror serializes access.
type Space struct {
	kind     models.RegisterKind
	baseline []models.RegisterValue
	edits    []models.RegisterValue
}

// NewSpace returns a zero-filled space of the given kind and size.
func NewSpace(kind models.RegisterKind, size int) *Space {
	s := &Space{kind: kind}
	s.Rebuild(size)

	return s
}

func (s *Space) Kind() models.RegisterKind { return s.kind }

func (s *Space) Size() int { return len(s.baseline) }

// Rebuild discards baseline and edits and zero-fills both to size.
// A negative size is treated as zero.
func (s *Space) Rebuild(size int) {
	if size < 0 {
		size = 0
	}

	zero := models.ZeroValue(s.kind)

	s.baseline = make([]models.RegisterValue, size)
	s.edits = make([]models.RegisterValue, size)

	for i := range s.baseline {
		s.baseline[i] = zero
		s.edits[i] = zero
	}
}

// Baseline returns a copy of the last confirmed values.
func (s *Space) Baseline() []models.RegisterValue {
	return append([]models.RegisterValue(nil), s.baseline...)
}

// Edits returns a copy of the operator's proposed values.
func (s *Space) Edits() []models.RegisterValue {
	return append([]models.RegisterValue(nil), s.edits...)
}

// RecordEdit sets edits[addr]. The baseline is never touched.
func (s *Space) RecordEdit(addr int, value models.RegisterValue) error {
	if err := s.checkAddr(addr); err != nil {
		return err
	}

	if value.Kind() != s.kind {
		return fmt.Errorf("%w: %s value for %s", ErrKindMismatch, value.Kind(), s.kind)
	}

	s.edits[addr] = value

	return nil
}

// RecordRawEdit parses operator text and records it. Out-of-range holding
// values are rejected with a *models.ValidationError.
func (s *Space) RecordRawEdit(addr int, raw string) (models.RegisterValue, error) {
	if err := s.checkAddr(addr); err != nil {
		return models.RegisterValue{}, err
	}

	value, err := models.ParseValue(s.kind, raw)
	if err != nil {
		return models.RegisterValue{}, err
	}

	s.edits[addr] = value

	return value, nil
}

// Dirty reports whether the edit at addr differs from the baseline.
func (s *Space) Dirty(addr int) bool {
	if addr < 0 || addr >= len(s.edits) {
		return false
	}

	return s.edits[addr] != s.baseline[addr]
}

// Diff lists every address whose edit differs from the baseline, ascending.
func (s *Space) Diff() []models.RegisterChange {
	var changes []models.RegisterChange

	for addr := range s.edits {
		if s.edits[addr] != s.baseline[addr] {
			changes = append(changes, models.RegisterChange{Addr: addr, Value: s.edits[addr]})
		}
	}

	return changes
}

// Apply overwrites baseline and edits with a full read of the space. values
// must cover the whole space; on mismatch nothing is changed.
func (s *Space) Apply(values []models.RegisterValue) error {
	if len(values) != len(s.baseline) {
		return fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(values), len(s.baseline))
	}

	for i, v := range values {
		if v.Kind() != s.kind {
			return fmt.Errorf("%w: value %d is %s", ErrKindMismatch, i, v.Kind())
		}
	}

	copy(s.baseline, values)
	copy(s.edits, values)

	return nil
}

// Commit moves the written values into the baseline. Only the addresses in
// changes are touched; other pending edits stay dirty. Every change is checked
// before any is applied.
func (s *Space) Commit(changes []models.RegisterChange) error {
	for _, c := range changes {
		if err := s.checkAddr(c.Addr); err != nil {
			return err
		}

		if c.Value.Kind() != s.kind {
			return fmt.Errorf("%w: %s value at %d", ErrKindMismatch, c.Value.Kind(), c.Addr)
		}
	}

	for _, c := range changes {
		s.baseline[c.Addr] = c.Value
	}

	return nil
}

func (s *Space) checkAddr(addr int) error {
	if addr < 0 || addr >= len(s.baseline) {
		return fmt.Errorf("%w: %s address %d (size %d)", ErrAddressOutOfRange, s.kind, addr, len(s.baseline))
	}

	return nil
}
