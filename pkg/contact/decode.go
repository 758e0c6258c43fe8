package contact

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UnmarshalJSON decodes a contact without ever failing on field types.
// Extraction output is untrusted, so one mistyped field must not reject the
// whole analysis:
//
//   - a managerId that is not a string becomes nil
//   - a seniorityRank that is not a number or numeric string becomes 0,
//     which [Normalize] raises to MinRank
//   - other text fields that are not strings become ""
//   - an element that is not an object yields a contact with an empty ID,
//     which the transform package drops
func (c *Contact) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		fields = nil
	}
	*c = fromFields(fields)
	return nil
}

// UnmarshalTOML applies the same rules as UnmarshalJSON to a TOML table.
func (c *Contact) UnmarshalTOML(v any) error {
	fields, _ := v.(map[string]any)
	*c = fromFields(fields)
	return nil
}

func fromFields(m map[string]any) Contact {
	c := Contact{
		ID:              text(m["id"]),
		Name:            text(m["name"]),
		Title:           text(m["title"]),
		Department:      text(m["department"]),
		BuyingRole:      BuyingRole(text(m["buyingRole"])),
		PowerLevel:      PowerLevel(text(m["powerLevel"])),
		Stance:          Stance(text(m["stance"])),
		SeniorityRank:   rank(m["seniorityRank"]),
		StrategicAction: text(m["strategicAction"]),
	}
	if id, ok := m["managerId"].(string); ok {
		c.ManagerID = &id
	}
	return c
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

// rank reads a seniority rank from a JSON number, a TOML integer or float,
// or a numeric string. Anything else is 0.
func rank(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	switch {
	case math.IsNaN(f) || f < MinRank:
		return 0
	case f > MaxRank:
		return MaxRank
	}
	return int(f)
}
