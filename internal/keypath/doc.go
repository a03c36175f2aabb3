// Package keypath parses dotted/bracketed property paths and performs
// get/set/has/delete operations against arbitrary nested JSON structures
// (maps, slices, scalars).
//
// A path string such as "apps.blog[0].name" is parsed into an ordered
// sequence of segments: property names split on "." and numeric array
// indices taken from "[n]" bracket groups. A path addresses at most one
// location in a document.
//
// Traversal semantics:
//   - Get through a missing key, out-of-range index, or scalar returns
//     not-found rather than an error.
//   - A present-but-null value counts as present; Has reports true for it.
//   - Set creates intermediate containers as it walks; whether an object or
//     an array is created is decided by the next segment's kind. Setting
//     through an existing scalar is a silent no-op.
//   - Delete removes map keys outright and sets array slots to nil without
//     compacting the remaining indices, which keeps it consistent with the
//     present-but-null rule above.
package keypath
