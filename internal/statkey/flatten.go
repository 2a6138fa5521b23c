package statkey

import (
	"encoding/json"
	"math"
	"strconv"
)

// FlattenNumeric reduces an arbitrary decoded-JSON tree into a flat map of
// canonical metric keys to finite numeric values. Booleans and nulls are
// discarded, numeric strings are coerced, non-numeric strings dropped. Map
// traversal appends "_childKey" to the path and list traversal appends the
// element index. When two paths normalize to the same key the last visited
// value wins.
func FlattenNumeric(payload any) map[string]float64 {
	metrics := make(map[string]float64)

	switch node := payload.(type) {
	case map[string]any:
		for childKey, childValue := range node {
			visitNumeric(metrics, childValue, childKey)
		}
	default:
		visitNumeric(metrics, payload, "value")
	}

	return metrics
}

func visitNumeric(metrics map[string]float64, node any, path string) {
	switch value := node.(type) {
	case nil, bool:
		return
	case map[string]any:
		for childKey, childValue := range value {
			visitNumeric(metrics, childValue, path+"_"+childKey)
		}
	case []any:
		for index, child := range value {
			visitNumeric(metrics, child, path+"_"+strconv.Itoa(index))
		}
	default:
		numeric, ok := coerceFloat(value)
		if !ok || !isFinite(numeric) {
			return
		}
		if key := Normalize(path); key != "" {
			metrics[key] = numeric
		}
	}
}

// CoerceFloat converts numeric scalars and numeric strings to float64. Empty
// strings and anything non-numeric report false.
func CoerceFloat(value any) (float64, bool) {
	numeric, ok := coerceFloat(value)
	if !ok || !isFinite(numeric) {
		return 0, false
	}
	return numeric, true
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case string:
		if v == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(v, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
