// Package vdom defines the declarative UI node model shared by the tree
// builder, the render engine and the patch applier.
//
// # Core Types
//
// Node is one element of a declarative tree: an id, an element type, the
// optional text/size/position fields, an open-ended style map and ordered
// children. Props holds open-ended property bags.
//
// A Patch names a target element id and an ordered Change. Each entry of a
// Change carries a Value, which is either Set(v) or Remove(). JSON null in
// a patch document decodes to Remove, so "set to nil" and "remove" never
// collide.
//
// # Flat properties
//
// Live elements keep one flat property bag. Node.Flatten produces it:
// attrs first, then style entries, then text, size and position. Patches
// address the same keys.
//
// # Diffing
//
// Diff compares two trees matched by id and returns the patches that turn
// the property state of the first into the second. Unpatchable lists the
// ids that cannot be reached by patches (new ids and type changes) and need
// a full render instead.
package vdom
