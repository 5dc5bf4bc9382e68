package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes is an open key-value bag of scalar strings carried on products
// (case-pack notes, supplier codes). The pricing engine never inspects keys;
// values are validated at the API boundary only.
type Attributes map[string]string

// Value implements driver.Valuer so the map persists as a JSONB column.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for the JSONB attributes column.
func (a *Attributes) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("attributes: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*a = Attributes{}
		return nil
	}
	return json.Unmarshal(raw, a)
}
