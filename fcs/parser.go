package fcs

import "github.com/roach88/fcmcmp/frame"

// Metadata holds the TEXT segment keywords of an FCS file.
//
// Keys beginning with '$' are FCS-standard keywords and are normalized to
// upper case; vendor keywords keep their original spelling. Metadata is
// shared between every well reference pointing at the same physical file
// and must be treated as read-only by processing steps.
type Metadata map[string]string

// Parser turns a raw instrument data file into an event frame plus its
// keyword metadata.
//
// The experiment loader depends on this interface rather than on
// FileParser directly so that tests can count or fail loads.
type Parser interface {
	Parse(path string) (*frame.Frame, Metadata, error)
}
