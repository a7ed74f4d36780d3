package sections

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value stores the schema as a JSON array.
func (s Schema) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *Schema) Scan(value interface{}) error {
	if value == nil {
		*s = Schema{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Schema: %T", value)
	}

	if len(data) == 0 {
		*s = Schema{}
		return nil
	}

	var decoded Schema
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// GormDataType keeps AutoMigrate on jsonb for the schema column.
func (Schema) GormDataType() string {
	return "jsonb"
}
