package transform

import (
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/org"
)

// Sanitize resolves each contact's manager reference against ids.
//
//   - no manager         → rootID
//   - manager == own id  → rootID
//   - manager not in ids → rootID
//   - otherwise          → the manager id, unchanged
//
// Sanitize is total. It does not detect loops longer than one hop; run
// [BreakCycles] on the result for that.
func Sanitize(cs []contact.Contact, ids IDSet, rootID string) []org.Member {
	out := make([]org.Member, len(cs))
	for i, c := range cs {
		m := org.Member{Contact: c, ParentID: rootID, Resolution: org.ResolvedManager}
		switch mgr := c.Manager(); {
		case !c.HasManager():
			m.Resolution = org.ResolvedNoManager
		case mgr == c.ID:
			m.Resolution = org.ResolvedSelfLoop
		case !ids.Has(mgr):
			m.Resolution = org.ResolvedDangling
		default:
			m.ParentID = mgr
		}
		out[i] = m
	}
	return out
}
