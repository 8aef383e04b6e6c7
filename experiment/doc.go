// Package experiment loads flow cytometry experiment metadata and builds
// the in-memory experiment collection.
//
// A metadata file is a sequence of YAML documents. An optional leading
// header document maps plate names to data directories; every other
// document describes one experiment: a label, a mapping of condition names
// to well references, and any number of passthrough fields. Loading
// resolves each well reference to exactly one physical .fcs file and
// parses every physical well at most once, however many references point
// at it.
//
// SHARING MODEL:
//
// References that resolve to the same physical well share the parsed frame
// and metadata at load time, but each reference gets its own Well wrapper.
// Wells are copy-on-first-write: reading sees the shared frame, the first
// in-place mutation through MutableData clones it. Processing steps that
// replace a well's data only ever affect that one reference.
//
// ERRORS:
//
// Every failure surfaces as *Error with a code from the fixed taxonomy
// (malformed header, malformed experiment, unknown plate, ambiguous well,
// missing well, well load) plus the document position, reference text and
// plate path needed to diagnose it. Loading is fail-fast: the first error
// aborts with no partial collection.
package experiment
