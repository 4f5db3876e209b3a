package jsonmap

import (
	"fmt"
	"strconv"

	"gorm.io/datatypes"
)

// FromStringMap converts a string map into a GORM JSON map value.
func FromStringMap(values map[string]string) datatypes.JSONMap {
	if len(values) == 0 {
		return datatypes.JSONMap{}
	}

	out := datatypes.JSONMap{}
	for key, value := range values {
		out[key] = value
	}
	return out
}

// FromInterfaceMap wraps a decoded JSON object as a GORM JSON map
// value, never returning nil so empty options still serialize as {}.
func FromInterfaceMap(values map[string]interface{}) datatypes.JSONMap {
	if len(values) == 0 {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(values)
}

// ToStringMap converts a JSON map into a string map.
func ToStringMap(values datatypes.JSONMap) map[string]string {
	if len(values) == 0 {
		return map[string]string{}
	}

	out := make(map[string]string, len(values))
	for key, value := range values {
		if str, ok := value.(string); ok {
			out[key] = str
			continue
		}
		out[key] = fmt.Sprint(value)
	}
	return out
}

// Int64 extracts an integer value, tolerating the float64 and string
// encodings JSON round-trips produce.
func Int64(values datatypes.JSONMap, key string) (int64, bool) {
	raw, ok := values[key]
	if !ok || raw == nil {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
