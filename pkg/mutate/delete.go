package mutate

import (
	"github.com/matzehuels/orgtower/pkg/contact"
)

// Delete returns a copy of a without the contact id, and true. Contacts that
// reported to id now report to id's former manager. When id is not present
// Delete returns a unchanged and false.
//
// Every entry carrying id is removed; the first one supplies the former
// manager, matching which duplicate survives validation. A contact that
// named itself as manager leaves its reports without a manager.
func Delete(a contact.Analysis, id string) (contact.Analysis, bool) {
	target, ok := a.Contact(id)
	if !ok {
		return a, false
	}

	bridge := target.ManagerID
	if target.Manager() == id {
		bridge = nil
	}

	out := a.Clone()
	kept := out.Contacts[:0]
	for _, c := range out.Contacts {
		if c.ID == id {
			continue
		}
		if c.HasManager() && c.Manager() == id {
			c.ManagerID = nil
			if bridge != nil {
				c.ManagerID = contact.Ref(*bridge)
			}
		}
		kept = append(kept, c)
	}
	out.Contacts = kept
	return out, true
}

// Reports returns the ids of the contacts whose manager is id, in order.
func Reports(a contact.Analysis, id string) []string {
	var out []string
	for _, c := range a.Contacts {
		if c.HasManager() && c.Manager() == id && c.ID != id {
			out = append(out, c.ID)
		}
	}
	return out
}
