package postgres

import (
	"database/sql"
	"time"

	sonic "github.com/bytedance/sonic"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func encodeJSONMap(value map[string]any) string {
	if len(value) == 0 {
		return "{}"
	}
	encoded, err := sonic.MarshalString(value)
	if err != nil {
		return "{}"
	}
	return encoded
}

func decodeJSONMap(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]any)
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func encodeJSONStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	encoded, err := sonic.MarshalString(values)
	if err != nil {
		return "[]"
	}
	return encoded
}

func decodeJSONStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func nullableTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	v := value.UTC()
	return &v
}
