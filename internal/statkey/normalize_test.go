package statkey

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "percent substitution", raw: "Rec Yd%", want: "rec_yd_pct"},
		{name: "collapses separator runs", raw: "air--yards / game", want: "air_yards_game"},
		{name: "trims edge separators", raw: "__epa__", want: "epa"},
		{name: "leading digit prefixed", raw: "40_yard_dash", want: "v_40_yard_dash"},
		{name: "empty stays empty", raw: "  ---  ", want: ""},
		{name: "already canonical", raw: "target_share", want: "target_share"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.raw)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Rec Yd%", "40 Yard Dash", "pass-EPA/play", "v_40_time", "  "}
	for _, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "Odell Beckham Jr.", want: "odellbeckham"},
		{raw: "Marvin Harrison II", want: "marvinharrison"},
		{raw: "D'Andre Swift", want: "dandreswift"},
		{raw: "A.J. Brown", want: "ajbrown"},
	}

	for _, tc := range cases {
		if got := NormalizeName(tc.raw); got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{key: "fantasy_points_ppr", want: "Fantasy Points (PPR)"},
		{key: "pass_epa", want: "Pass EPA"},
		{key: "rec_yd", want: "Rec Yards"},
		{key: "rookie_yr", want: "Rookie Year"},
		{key: "receiving_yards_after_catch_pct", want: "Receiving Yards After Catch Pct (YAC)"},
		{key: "target_share", want: "Target Share"},
	}

	for _, tc := range cases {
		if got := Label(tc.key); got != tc.want {
			t.Fatalf("Label(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}
