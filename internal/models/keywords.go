package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// Keywords is an ordered list of strings stored as a JSON array column.
type Keywords []string

// Value implements driver.Valuer.
func (k Keywords) Value() (driver.Value, error) {
	if k == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(k))
	if err != nil {
		return nil, fmt.Errorf("failed to encode keywords: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (k *Keywords) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*k = Keywords{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported keywords column type %T", src)
	}
	if len(raw) == 0 {
		*k = Keywords{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode keywords: %w", err)
	}
	*k = out
	return nil
}
