// Package mutate applies user edits to an analysis and to its view.
//
// # Delete
//
// [Delete] removes a contact from the canonical analysis and bridges its
// direct reports to the removed contact's own manager, so no subordinate is
// orphaned. Deleting an unknown id is a no-op, not an error.
//
// # Reposition
//
// Manual drags never touch the analysis or the computed layout. They are
// kept in an [Overrides] map and combined with the layout by [Merge] at
// render time. Connectors are derived from the merged positions, so edges
// to the moved node's parent and children follow it.
//
// # View
//
// A [View] tracks one working view through its states:
//
//	Unbuilt --Install--> Built --Reposition--> Built (dirty)
//	   ^                   |
//	   +----Invalidate-----+   (filter change, delete, re-analysis)
//
// Installing a new layout discards every override.
package mutate
