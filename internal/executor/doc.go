// Package executor walks a parsed operation against the schema registry and
// a Runtime, producing a partial-success response: data alongside
// path-tagged errors.
//
// Sibling field groups of query and subscription selection sets resolve
// concurrently; root mutation fields resolve serially in document order. A
// null resolved for a non-null position propagates to the nearest nullable
// ancestor, and the operation deadline is checked between field resolutions
// so an expired context aborts untouched subtrees with timeout errors.
package executor
