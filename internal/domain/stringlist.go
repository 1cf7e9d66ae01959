package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringList is a custom type for handling JSONB string arrays in
// PostgreSQL. It implements sql.Scanner and driver.Valuer to convert
// between Go's []string and a JSONB column.
type StringList []string

// Scan implements the sql.Scanner interface.
func (s *StringList) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported type for StringList")
	}

	if len(data) == 0 {
		*s = nil
		return nil
	}

	return json.Unmarshal(data, s)
}

// Value implements the driver.Valuer interface. A nil list is stored as
// SQL NULL so that absent and empty stay distinguishable.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal([]string(s))
}
