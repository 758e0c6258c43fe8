package transform

import (
	"slices"

	"github.com/matzehuels/orgtower/pkg/org"
)

// BreakCycles detaches manager loops so that every member's parent chain
// reaches rootID. It modifies members in place and returns the number of
// loops cut.
//
// # Algorithm
//
// Members are visited in input order. From each unvisited member the walk
// follows ParentID links, marking members as on-path, until it reaches the
// root, a member already known to reach the root, or a member already on the
// current path. The last case is a loop: the loop member with the lowest
// input index is redirected to rootID and marked [org.ResolvedCycle]. Every
// member on the path then reaches the root.
//
// A walk never takes more than len(members) steps, since each step marks a
// distinct member. Self loops are handled the same way, although [Sanitize]
// already removes them.
//
// # Performance
//
// Each member is placed on a path at most once, so the whole pass is O(N).
func BreakCycles(members []org.Member, rootID string) int {
	const (
		unvisited = iota
		onPath
		rooted
	)

	index := make(map[string]int, len(members))
	for i, m := range members {
		index[m.Contact.ID] = i
	}

	state := make([]int, len(members))
	limit := len(members)
	broken := 0

	for start := range members {
		if state[start] != unvisited {
			continue
		}

		var path []int
		cur := start
		for steps := 0; ; steps++ {
			if state[cur] == rooted {
				break
			}
			if state[cur] == onPath || steps > limit {
				loop := path
				if i := slices.Index(path, cur); i >= 0 {
					loop = path[i:]
				}
				cut := slices.Min(loop)
				members[cut].ParentID = rootID
				members[cut].Resolution = org.ResolvedCycle
				broken++
				break
			}
			state[cur] = onPath
			path = append(path, cur)

			next, ok := index[members[cur].ParentID]
			if !ok {
				break // parent is the root
			}
			cur = next
		}

		for _, i := range path {
			state[i] = rooted
		}
	}
	return broken
}
