// Package fcs reads raw flow cytometry standard (FCS) data files.
//
// The package exposes two things: the Parser interface, which is how the
// experiment loader consumes well data (and how tests substitute counting
// or failing parsers), and FileParser, the default implementation that
// reads FCS 3.0 and 3.1 files from disk.
//
// FILE LAYOUT:
//
// An FCS file has a 58-byte ASCII header (version string plus six
// right-justified segment offsets), a delimited TEXT segment of keyword
// and value pairs, and a binary DATA segment holding the event matrix.
// FileParser supports list-mode ($MODE L) data with $DATATYPE F (float32),
// D (float64) or I (unsigned integers of $PnB bits), in either byte order.
// Large files may carry zero DATA offsets in the header; the $BEGINDATA
// and $ENDDATA keywords are used as the fallback.
//
// The full TEXT keyword map is returned as Metadata so that downstream
// processing steps can consult instrument keywords such as $TIMESTEP.
package fcs
