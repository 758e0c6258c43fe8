package transform

import (
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/org"
)

// Report counts the repairs Reconcile applied.
type Report struct {
	Input        int `json:"input"`         // Contacts received
	Kept         int `json:"kept"`          // Contacts that reached the tree
	MissingIDs   int `json:"missing_ids"`   // Dropped for an empty id
	Duplicates   int `json:"duplicates"`    // Dropped as repeated ids
	Unmanaged    int `json:"unmanaged"`     // Had no manager
	SelfLoops    int `json:"self_loops"`    // Named themselves as manager
	Dangling     int `json:"dangling"`      // Named an unknown manager
	CyclesBroken int `json:"cycles_broken"` // Loops cut by BreakCycles
}

// Rerouted returns how many contacts had their own manager reference
// overridden.
func (r Report) Rerouted() int {
	return r.SelfLoops + r.Dangling + r.CyclesBroken
}

// Reconcile runs Dedupe, Sanitize and BreakCycles over cs and returns members
// ready for [org.Build] together with a report of what was repaired.
func Reconcile(cs []contact.Contact, rootID string) ([]org.Member, Report) {
	r := Report{Input: len(cs)}
	for _, c := range cs {
		if c.ID == "" {
			r.MissingIDs++
		}
	}

	kept, ids := Dedupe(cs)
	r.Kept = len(kept)
	r.Duplicates = len(cs) - len(kept) - r.MissingIDs

	members := Sanitize(kept, ids, rootID)
	r.CyclesBroken = BreakCycles(members, rootID)

	for _, m := range members {
		switch m.Resolution {
		case org.ResolvedNoManager:
			r.Unmanaged++
		case org.ResolvedSelfLoop:
			r.SelfLoops++
		case org.ResolvedDangling:
			r.Dangling++
		}
	}
	return members, r
}
