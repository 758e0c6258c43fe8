package contact

import "strings"

// Normalize returns a copy of c with every scalar field coerced into range.
//
//   - ID and ManagerID are trimmed; a blank ManagerID becomes nil
//   - an empty Department becomes DefaultDepartment
//   - enum fields are parsed leniently (see ParseBuyingRole and friends)
//   - SeniorityRank is clamped to [MinRank, MaxRank]
//
// Normalize never rejects a record. Identity and reference problems are left
// for the transform package, which knows about the whole working set.
func Normalize(c Contact) Contact {
	c = c.Clone()
	c.ID = strings.TrimSpace(c.ID)
	if c.ManagerID != nil {
		m := strings.TrimSpace(*c.ManagerID)
		if m == "" {
			c.ManagerID = nil
		} else {
			c.ManagerID = &m
		}
	}
	if strings.TrimSpace(c.Department) == "" {
		c.Department = DefaultDepartment
	}
	c.BuyingRole = ParseBuyingRole(string(c.BuyingRole))
	c.PowerLevel = ParsePowerLevel(string(c.PowerLevel))
	c.Stance = ParseStance(string(c.Stance))
	c.SeniorityRank = min(max(c.SeniorityRank, MinRank), MaxRank)
	return c
}

// NormalizeAll applies Normalize to every contact, preserving order.
func NormalizeAll(cs []Contact) []Contact {
	out := make([]Contact, len(cs))
	for i, c := range cs {
		out[i] = Normalize(c)
	}
	return out
}

// NormalizeAnalysis returns a deep copy of a with normalized contacts and
// trimmed narrative fields.
func NormalizeAnalysis(a Analysis) Analysis {
	out := a.Clone()
	out.AccountName = strings.TrimSpace(out.AccountName)
	out.ExecutiveSummary = strings.TrimSpace(out.ExecutiveSummary)
	out.Contacts = NormalizeAll(a.Contacts)
	return out
}
