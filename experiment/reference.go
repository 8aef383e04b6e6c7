package experiment

import (
	"fmt"
	"regexp"
)

// A well reference names a well within a plate: "A1" or "replicate_1/A1".
// The well label is a row letter followed by a column number, zero padding
// allowed. The plate segment is any non-empty name followed by a slash;
// when absent, the reference selects the default plate.
var referencePattern = regexp.MustCompile(`^(?:(.+)/)?([A-H][0-9]+)$`)

// ParseReference splits a well reference into its plate name and well
// label. The plate name is "" for unprefixed references.
func ParseReference(ref string) (plate, well string, err error) {
	m := referencePattern.FindStringSubmatch(ref)
	if m == nil {
		return "", "", &Error{
			Code:      ErrCodeMalformedExperiment,
			Message:   fmt.Sprintf("cannot parse well reference %q", ref),
			Reference: ref,
		}
	}
	return m[1], m[2], nil
}
