package experiment

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PhysicalID is the canonical identity of a physical well: the absolute
// plate directory plus the well label. It is the cache and deduplication
// key: two references with different surface text that resolve to the
// same PhysicalID share one load.
type PhysicalID struct {
	Plate string // absolute plate directory
	Well  string // well label, e.g. "A1"
}

// String renders the identity for logs and error messages.
func (id PhysicalID) String() string {
	return filepath.Join(id.Plate, id.Well)
}

// Resolve locates the physical data file for a well reference.
//
// roots maps plate names to directories; the empty name is the default
// plate used by unprefixed references. Resolve is pure apart from
// directory listing: caching is the Loader's job.
//
// A filename matches when the well label appears as a whole '_'-separated
// token of its base name, so "A1" never matches "A10". Labels and
// filenames are NFC-normalized before comparison because some plate
// exports decompose Unicode in filenames; case is preserved.
func Resolve(ref string, roots map[string]string) (PhysicalID, string, error) {
	plate, well, err := ParseReference(ref)
	if err != nil {
		return PhysicalID{}, "", err
	}

	root, ok := roots[plate]
	if !ok {
		msg := fmt.Sprintf("plate %q not defined", plate)
		if plate == "" {
			msg = "no default plate defined"
		}
		return PhysicalID{}, "", &Error{
			Code:      ErrCodeUnknownPlate,
			Message:   msg,
			Reference: ref,
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return PhysicalID{}, "", &Error{
			Code:      ErrCodeUnknownPlate,
			Message:   fmt.Sprintf("cannot resolve plate path %q: %v", root, err),
			Reference: ref,
			Plate:     root,
		}
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return PhysicalID{}, "", &Error{
			Code:      ErrCodeUnknownPlate,
			Message:   "plate directory does not exist",
			Reference: ref,
			Plate:     abs,
		}
	}

	matches, err := findWellFiles(abs, well)
	if err != nil {
		return PhysicalID{}, "", &Error{
			Code:      ErrCodeUnknownPlate,
			Message:   fmt.Sprintf("cannot scan plate directory: %v", err),
			Reference: ref,
			Plate:     abs,
		}
	}

	switch len(matches) {
	case 0:
		return PhysicalID{}, "", &Error{
			Code:      ErrCodeMissingWell,
			Message:   fmt.Sprintf("no .fcs file found for well %q", well),
			Reference: ref,
			Plate:     abs,
		}
	case 1:
		return PhysicalID{Plate: abs, Well: well}, matches[0], nil
	default:
		return PhysicalID{}, "", &Error{
			Code:      ErrCodeAmbiguousWell,
			Message:   fmt.Sprintf("multiple .fcs files found for well %q: %s", well, strings.Join(matches, ", ")),
			Reference: ref,
			Plate:     abs,
		}
	}
}

// findWellFiles walks the plate directory and returns every .fcs file
// whose base name carries the well label as a whole token.
func findWellFiles(dir, well string) ([]string, error) {
	label := norm.NFC.String(well)

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".fcs") {
			return nil
		}
		base := strings.TrimSuffix(name, ext)
		for _, token := range strings.Split(base, "_") {
			if norm.NFC.String(token) == label {
				matches = append(matches, path)
				return nil
			}
		}
		return nil
	})
	return matches, err
}
