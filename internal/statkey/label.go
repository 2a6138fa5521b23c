package statkey

import "strings"

var labelOverrides = map[string]string{
	"fantasy_points_ppr":           "Fantasy Points (PPR)",
	"fantasy_points_half_ppr":      "Fantasy Points (Half PPR)",
	"fantasy_points_std":           "Fantasy Points (STD)",
	"passing_yards":                "Passing Yards",
	"rushing_yards":                "Rushing Yards",
	"receiving_yards":              "Receiving Yards",
	"receptions":                   "Receptions",
	"touchdowns":                   "Touchdowns",
	"turnovers":                    "Turnovers",
	"age":                          "Age",
	"years_exp":                    "Years Experience",
	"yac":                          "Yards After Catch (YAC)",
	"yards_after_catch":            "Yards After Catch (YAC)",
	"receiving_yards_after_catch":  "Receiving Yards After Catch",
	"rushing_yards_after_contact":  "Rushing Yards After Contact",
}

var acronyms = map[string]struct{}{
	"ppr":  {},
	"std":  {},
	"yac":  {},
	"epa":  {},
	"cpoe": {},
	"qb":   {},
	"wr":   {},
	"rb":   {},
	"te":   {},
	"td":   {},
	"yds":  {},
}

// Label derives a human-readable display label for a canonical metric key.
func Label(raw string) string {
	key := Normalize(raw)
	if key == "" {
		return ""
	}
	if label, ok := labelOverrides[key]; ok {
		return label
	}

	tokens := strings.Split(key, "_")
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		switch {
		case token == "":
			continue
		case token == "yd":
			parts = append(parts, "Yards")
		case token == "yr":
			parts = append(parts, "Year")
		default:
			if _, ok := acronyms[token]; ok {
				parts = append(parts, strings.ToUpper(token))
				continue
			}
			parts = append(parts, capitalize(token))
		}
	}

	label := strings.Join(parts, " ")
	if strings.Contains(key, "yards_after_catch") && !strings.Contains(label, "YAC") {
		label += " (YAC)"
	}
	return label
}

func capitalize(token string) string {
	if token == "" {
		return token
	}
	return strings.ToUpper(token[:1]) + token[1:]
}
