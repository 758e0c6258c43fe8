package transform

import "github.com/matzehuels/orgtower/pkg/contact"

// IDSet is a set of contact ids.
type IDSet map[string]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Dedupe removes contacts whose id was already seen, keeping the first
// occurrence and the input order. Contacts with an empty id cannot be
// referenced and are dropped as well. It returns copies of the surviving
// contacts and their id set.
func Dedupe(cs []contact.Contact) ([]contact.Contact, IDSet) {
	ids := make(IDSet, len(cs))
	out := make([]contact.Contact, 0, len(cs))
	for _, c := range cs {
		if c.ID == "" {
			continue
		}
		if ids.Has(c.ID) {
			continue
		}
		ids[c.ID] = struct{}{}
		out = append(out, c.Clone())
	}
	return out, ids
}

// FilterDepartment returns copies of the contacts whose department equals
// dept (exact, case-sensitive). Contacts without a department count as
// [contact.DefaultDepartment]. An empty dept keeps every contact.
func FilterDepartment(cs []contact.Contact, dept string) []contact.Contact {
	if dept == "" {
		return contact.CloneAll(cs)
	}
	out := make([]contact.Contact, 0, len(cs))
	for _, c := range cs {
		d := c.Department
		if d == "" {
			d = contact.DefaultDepartment
		}
		if d == dept {
			out = append(out, c.Clone())
		}
	}
	return out
}
