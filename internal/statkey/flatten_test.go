package statkey

import (
	"math"
	"testing"
)

func TestFlattenNumeric(t *testing.T) {
	t.Run("nested maps and lists", func(t *testing.T) {
		payload := map[string]any{
			"a": map[string]any{"b": float64(1), "c": "x"},
			"d": []any{float64(2), float64(3)},
		}

		got := FlattenNumeric(payload)
		want := map[string]float64{"a_b": 1, "d_0": 2, "d_1": 3}
		if len(got) != len(want) {
			t.Fatalf("unexpected metric count: got=%v want=%v", got, want)
		}
		for key, value := range want {
			if got[key] != value {
				t.Fatalf("metric %s: got=%v want=%v", key, got[key], value)
			}
		}
	})

	t.Run("numeric strings coerced, booleans and nulls dropped", func(t *testing.T) {
		payload := map[string]any{
			"snap_pct": "0.85",
			"active":   true,
			"injury":   nil,
			"team":     "KC",
		}

		got := FlattenNumeric(payload)
		if len(got) != 1 {
			t.Fatalf("expected single metric, got %v", got)
		}
		if got["snap_pct"] != 0.85 {
			t.Fatalf("snap_pct: got=%v", got["snap_pct"])
		}
	})

	t.Run("non finite numbers dropped", func(t *testing.T) {
		payload := map[string]any{
			"bad_nan": math.NaN(),
			"bad_inf": math.Inf(1),
			"good":    float64(7),
		}

		got := FlattenNumeric(payload)
		if len(got) != 1 || got["good"] != 7 {
			t.Fatalf("unexpected metrics: %v", got)
		}
	})

	t.Run("unrepresentable keys dropped", func(t *testing.T) {
		payload := map[string]any{"---": float64(4)}
		if got := FlattenNumeric(payload); len(got) != 0 {
			t.Fatalf("expected empty metrics, got %v", got)
		}
	})

	t.Run("scalar payload keyed as value", func(t *testing.T) {
		got := FlattenNumeric(float64(12))
		if got["value"] != 12 {
			t.Fatalf("unexpected metrics: %v", got)
		}
	})
}
