// Package render projects a laid-out org tree into drawable primitives.
//
// # Overview
//
// [Project] turns a tree and its (possibly manually adjusted) layout into a
// [Scene]: one [Box] per contact and one orthogonal [Connector] per
// reporting line. The synthetic root and its links are left out unless
// [WithRoot] is given. Connectors are always derived from the positions
// they are handed, so a dragged box takes its edges with it.
//
// [NewDocument] wraps a scene into the serializable [Document] consumed by
// external renderers: node id, x, y, parent id and depth plus the contact
// fields.
//
// Output formats live in the [sink] subpackage.
//
// [sink]: github.com/matzehuels/orgtower/pkg/render/sink
package render
