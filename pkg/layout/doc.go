// Package layout assigns deterministic 2-D coordinates to an org tree.
//
// # Overview
//
// [Compute] takes the tree produced by [org.Build] and returns a [Layout]:
// one [PositionedNode] per tree node, the synthetic root included. The
// root is needed for symmetry (it centers the top level) even though
// renderers leave it out.
//
// # Algorithm
//
// The layout is the contour-based tidy tree of Reingold and Tilford:
//
//  1. Post-order, each subtree is placed relative to its own root. Sibling
//     subtrees are laid left to right; each new sibling is shifted right
//     until its left contour clears the right contour of the siblings
//     already placed by at least NodeWidth + HorizontalSpacing at every
//     depth they share.
//  2. The parent is centered between its first and last child.
//  3. Pre-order, relative offsets are accumulated into absolute positions.
//
// A leaf occupies exactly one slot of NodeWidth + HorizontalSpacing. The y
// coordinate depends only on depth: depth * (NodeHeight + VerticalSpacing).
// Coordinates are then shifted so the leftmost node sits at x = 0.
//
// # Coordinates
//
// X and Y are the top-left corner of a node's box. The box spans
// NodeWidth by NodeHeight from there; [PositionedNode.Center] returns its
// middle.
//
// # Determinism
//
// The traversal order is fixed by the tree's sibling order and all
// arithmetic is done in the same sequence, so the same tree and options
// produce bit-for-bit identical coordinates.
package layout
