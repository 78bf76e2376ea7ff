package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray maps a uuid[] column onto a slice of parsed identifiers.
type UUIDArray []uuid.UUID

// Value marshals the slice into a Postgres array literal.
func (a UUIDArray) Value() (driver.Value, error) {
	strs := make([]string, len(a))
	for i, id := range a {
		strs[i] = id.String()
	}
	return pq.StringArray(strs).Value()
}

// Scan decodes the Postgres array literal back into identifiers.
func (a *UUIDArray) Scan(src any) error {
	if src == nil {
		*a = nil
		return nil
	}
	var strs pq.StringArray
	if err := strs.Scan(src); err != nil {
		return fmt.Errorf("uuid array: %w", err)
	}
	out := make(UUIDArray, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("uuid array element %q: %w", s, err)
		}
		out = append(out, id)
	}
	*a = out
	return nil
}

// Contains reports whether the array holds the given identifier.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}
