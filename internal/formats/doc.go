// Package formats implements the translation interchange codecs.
//
// Every supported file format converts to and from a single pivot
// representation, [Document]: a locale code plus an ordered sequence of
// (term, value) pairs. Business logic (import reconciliation, export
// aggregation) only ever sees the pivot, so adding a format means adding
// one codec entry and nothing else.
//
// # Codec Table
//
// The set of formats is closed and wire-visible. [Decode] and [Encode]
// dispatch through a fixed table keyed by [Format]; an identifier outside
// the set fails with [ErrNotImplemented].
//
// # Adapter Obligations
//
//   - A malformed input fails with a [*ParseError] and never yields a
//     partially populated document.
//   - Decoders preserve the order of entries as they appear in the input;
//     encoders preserve the order of the document given to them.
//   - Hierarchical formats (jsonnested, yamlnested) join path segments
//     with "." and allow at most six levels of nesting.
//   - Encoding a well-formed document does not fail; empty values encode
//     as empty leaves.
package formats
