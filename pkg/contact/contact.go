// Package contact defines the stakeholder records orgtower reconciles into a
// hierarchy, and the account-level Analysis that owns them.
//
// Contacts arrive from an extraction step that cannot be trusted: ids may
// repeat, manager references may point nowhere or form loops, enum fields may
// hold free text. This package only describes the records and normalizes
// their scalar fields (see [Normalize]). Structural repair lives in
// [github.com/matzehuels/orgtower/pkg/org/transform].
package contact

import (
	"slices"
	"strings"
)

// DefaultDepartment is assigned to contacts without a department.
const DefaultDepartment = "General"

// Seniority bounds. Lower ranks are more senior; RootRank is reserved for the
// synthetic root and never assigned to a real contact after normalization.
const (
	RootRank = 0
	MinRank  = 1
	MaxRank  = 10
)

// BuyingRole describes a contact's part in a purchase decision.
type BuyingRole string

const (
	RoleDecisionMaker       BuyingRole = "DecisionMaker"
	RoleTechnicalInfluencer BuyingRole = "TechnicalInfluencer"
	RoleInternalAdvocate    BuyingRole = "InternalAdvocate"
	RoleUser                BuyingRole = "User"
	RoleUnknown             BuyingRole = "Unknown"
)

// PowerLevel describes how much weight a contact carries.
type PowerLevel string

const (
	PowerHigh   PowerLevel = "High"
	PowerMedium PowerLevel = "Medium"
	PowerLow    PowerLevel = "Low"
)

// Stance describes a contact's attitude toward the deal.
type Stance string

const (
	StanceSupportive Stance = "Supportive"
	StanceNeutral    Stance = "Neutral"
	StanceResistant  Stance = "Resistant"
	StanceUnknown    Stance = "Unknown"
)

var (
	buyingRoles = []BuyingRole{RoleDecisionMaker, RoleTechnicalInfluencer, RoleInternalAdvocate, RoleUser, RoleUnknown}
	powerLevels = []PowerLevel{PowerHigh, PowerMedium, PowerLow}
	stances     = []Stance{StanceSupportive, StanceNeutral, StanceResistant, StanceUnknown}
)

// Contact is a single stakeholder record.
//
// ManagerID is a forward reference to another contact's ID; nil means the
// contact reports to nobody known.
type Contact struct {
	ID              string     `json:"id" toml:"id"`
	Name            string     `json:"name" toml:"name"`
	Title           string     `json:"title,omitempty" toml:"title,omitempty"`
	ManagerID       *string    `json:"managerId" toml:"managerId,omitempty"`
	Department      string     `json:"department,omitempty" toml:"department,omitempty"`
	BuyingRole      BuyingRole `json:"buyingRole,omitempty" toml:"buyingRole,omitempty"`
	PowerLevel      PowerLevel `json:"powerLevel,omitempty" toml:"powerLevel,omitempty"`
	Stance          Stance     `json:"stance,omitempty" toml:"stance,omitempty"`
	SeniorityRank   int        `json:"seniorityRank" toml:"seniorityRank"`
	StrategicAction string     `json:"strategicAction,omitempty" toml:"strategicAction,omitempty"`
}

// Manager returns the manager reference, or "" when there is none.
func (c Contact) Manager() string {
	if c.ManagerID == nil {
		return ""
	}
	return *c.ManagerID
}

// HasManager reports whether the contact carries a manager reference.
// The reference may still be dangling.
func (c Contact) HasManager() bool { return c.ManagerID != nil }

// Clone returns a copy that shares no pointers with c.
func (c Contact) Clone() Contact {
	if c.ManagerID != nil {
		c.ManagerID = Ref(*c.ManagerID)
	}
	return c
}

// Ref returns a pointer to id, for building ManagerID values.
func Ref(id string) *string { return &id }

// Analysis is the unit of persistence and mutation: an account narrative
// plus its ordered contact list.
type Analysis struct {
	AccountName           string    `json:"accountName" toml:"accountName"`
	ExecutiveSummary      string    `json:"executiveSummary,omitempty" toml:"executiveSummary,omitempty"`
	CriticalAlignmentGaps []string  `json:"criticalAlignmentGaps,omitempty" toml:"criticalAlignmentGaps,omitempty"`
	StrategicWins         []string  `json:"strategicWins,omitempty" toml:"strategicWins,omitempty"`
	Contacts              []Contact `json:"contacts" toml:"contacts"`
}

// Clone returns a deep copy of the analysis.
func (a Analysis) Clone() Analysis {
	out := a
	out.CriticalAlignmentGaps = slices.Clone(a.CriticalAlignmentGaps)
	out.StrategicWins = slices.Clone(a.StrategicWins)
	out.Contacts = CloneAll(a.Contacts)
	return out
}

// Contact returns the first contact with the given id.
func (a Analysis) Contact(id string) (Contact, bool) {
	for _, c := range a.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}

// CloneAll deep-copies a contact slice. A nil input yields nil.
func CloneAll(cs []Contact) []Contact {
	if cs == nil {
		return nil
	}
	out := make([]Contact, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

// Departments returns the distinct departments of cs in sorted order.
func Departments(cs []Contact) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cs {
		d := c.Department
		if d == "" {
			d = DefaultDepartment
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out
}

// ParseBuyingRole maps free text onto a BuyingRole, ignoring case and
// separators. Unrecognized values yield RoleUnknown.
func ParseBuyingRole(s string) BuyingRole {
	return parseEnum(s, buyingRoles, RoleUnknown)
}

// ParsePowerLevel maps free text onto a PowerLevel. The enum has no unknown
// member, so unrecognized values yield PowerMedium.
func ParsePowerLevel(s string) PowerLevel {
	return parseEnum(s, powerLevels, PowerMedium)
}

// ParseStance maps free text onto a Stance. Unrecognized values yield
// StanceUnknown.
func ParseStance(s string) Stance {
	return parseEnum(s, stances, StanceUnknown)
}

func parseEnum[T ~string](s string, values []T, fallback T) T {
	key := enumKey(s)
	for _, v := range values {
		if enumKey(string(v)) == key {
			return v
		}
	}
	return fallback
}

func enumKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
