// Package frame provides the labeled tabular value store that holds flow
// cytometry event data.
//
// A Frame is a column-ordered table of float64 values: rows are events,
// columns are named instrument channels. Frames are the unit of data that
// wells carry and that processing steps transform.
//
// MUTABILITY MODEL:
//
// Frames are mutable but cheap to clone. Loaded frames are shared between
// every well reference that resolves to the same physical file; the
// experiment package enforces copy-on-first-write so that a processing step
// mutating one reference never disturbs another. Row filtering (Filter) and
// column selection (Select) always allocate a new Frame and leave the
// receiver untouched, which is what makes that sharing discipline safe.
package frame
