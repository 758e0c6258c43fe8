// Package org provides the rooted organization tree that orgtower lays out
// and renders.
//
// # Overview
//
// Extracted contact lists are forests at best: several people without a
// manager, managers outside the extracted set, occasional loops. The layout
// engine needs exactly one rooted tree. This package supplies that tree and
// the synthetic root that stitches a forest together.
//
// A [Tree] is built from [Member] values, each a contact paired with its
// resolved parent id. Producing members (deduplication, reference
// sanitization, cycle breaking) is the job of the transform subpackage; this
// package only asserts the result:
//
//	members, _ := transform.Reconcile(contacts, rootID)
//	tree, err := org.Build(members, org.NewRoot(rootID))
//
// # Sibling Order
//
// Children of a node are ordered by ascending [contact.Contact.SeniorityRank]
// with input order as the tie-break, so more senior reports are drawn first.
// The order is part of the tree and drives the layout, which makes layouts
// reproducible for a given input sequence.
//
// # Structural Errors
//
// [Build] returns an error with code STRUCTURAL_VIOLATION when members do not
// form a single tree under the root (duplicate ids, missing parents,
// unreachable nodes). Sanitized input never triggers it; seeing one means the
// sanitizer has a defect, not that the input was bad.
//
// # Synthetic Root
//
// The root is a contact-shaped sentinel whose id comes from [NewRootID]: a
// namespaced random token regenerated per build. It takes part in layout but
// is excluded from rendering and is never written back into an analysis.
//
// # Concurrency
//
// A Tree is immutable after Build returns and safe for concurrent reads.
package org
