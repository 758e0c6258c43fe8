// Package transform turns an untrusted contact list into members that
// [org.Build] can assemble into a single tree.
//
// # Overview
//
// Extracted contacts rarely form a tree. This package applies a fixed,
// total sequence of repairs that never fails and never drops a usable record:
//
//  1. [FilterDepartment] narrows the working set to one department (optional)
//  2. [Dedupe] keeps the first record for each id
//  3. [Sanitize] resolves each manager reference to a valid parent or the root
//  4. [BreakCycles] detaches multi-hop manager loops from the root
//
// [Reconcile] runs steps 2-4 and returns a [Report] counting every repair.
//
// # Reference Resolution
//
// A manager reference is kept only if it names a different contact that
// survived deduplication. Everything else (no manager, self reference,
// unknown id) resolves to the synthetic root. Because filtering happens
// first, references that cross departments become unknown ids and the
// filtered view is still a valid standalone tree.
//
// # Cycle Breaking
//
// Sanitize only catches direct self loops. A chain such as A→B→A passes it
// and would leave both contacts unreachable from the root. [BreakCycles]
// walks every parent chain with a step bound equal to the member count and
// cuts each loop once, at the member that appears first in input order,
// by attaching it to the root.
package transform
