package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList is an ordered set of logical entity ids stored as a JSON text
// column. Append and Remove keep set semantics (no duplicates) so that
// link/unlink operations stay idempotent under retry.
type IDList []string

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T for IDList", value)
	}
	if len(data) == 0 {
		*l = IDList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// Contains reports whether id is present.
func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Append returns the list with id added at the end, unchanged if already present.
func (l IDList) Append(id string) IDList {
	if l.Contains(id) {
		return l
	}
	return append(l, id)
}

// Remove returns the list with every id in ids taken out. Missing ids are
// a no-op, preserving order of the survivors.
func (l IDList) Remove(ids []string) IDList {
	if len(ids) == 0 || len(l) == 0 {
		return l
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if _, gone := drop[v]; !gone {
			out = append(out, v)
		}
	}
	return out
}
