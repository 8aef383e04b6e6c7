package frame

import (
	"fmt"
	"slices"
)

// Frame is a column-ordered table of float64 values.
//
// Column order is significant: it is established at construction time and
// preserved by Clone and Filter. Select establishes a new order from its
// argument list.
type Frame struct {
	names []string
	cols  map[string][]float64
	rows  int
}

// New creates an empty frame with zero rows and the given column names,
// in order. Duplicate names are an error.
func New(names ...string) (*Frame, error) {
	f := &Frame{
		names: make([]string, 0, len(names)),
		cols:  make(map[string][]float64, len(names)),
	}
	for _, name := range names {
		if _, dup := f.cols[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		f.names = append(f.names, name)
		f.cols[name] = nil
	}
	return f, nil
}

// FromColumns creates a frame from named columns. The names slice fixes the
// column order; every name must have a column in cols, and all columns must
// have equal length.
func FromColumns(names []string, cols map[string][]float64) (*Frame, error) {
	f := &Frame{
		names: make([]string, 0, len(names)),
		cols:  make(map[string][]float64, len(names)),
	}
	for i, name := range names {
		values, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("no values for column %q", name)
		}
		if _, dup := f.cols[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		if i == 0 {
			f.rows = len(values)
		} else if len(values) != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", name, len(values), f.rows)
		}
		f.names = append(f.names, name)
		f.cols[name] = values
	}
	return f, nil
}

// NumRows returns the number of events in the frame.
func (f *Frame) NumRows() int { return f.rows }

// NumCols returns the number of channels in the frame.
func (f *Frame) NumCols() int { return len(f.names) }

// Columns returns the column names in order. The returned slice is a copy.
func (f *Frame) Columns() []string {
	return slices.Clone(f.names)
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the values of the named column and whether it exists.
//
// The returned slice is the frame's backing storage, not a copy. Callers
// that hold a shared frame must go through the well's copy-on-write
// accessor before mutating it.
func (f *Frame) Column(name string) ([]float64, bool) {
	values, ok := f.cols[name]
	return values, ok
}

// SetColumn replaces the named column, or appends it after the existing
// columns if it does not exist yet. The value count must match the frame's
// row count, except on a frame with no columns where it establishes it.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(f.names) > 0 && len(values) != f.rows {
		return fmt.Errorf("column %q has %d rows, want %d", name, len(values), f.rows)
	}
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	if len(f.names) == 1 {
		f.rows = len(values)
	}
	f.cols[name] = values
	return nil
}

// DropColumn removes the named column. Dropping an absent column is a no-op.
func (f *Frame) DropColumn(name string) {
	if _, ok := f.cols[name]; !ok {
		return
	}
	delete(f.cols, name)
	f.names = slices.DeleteFunc(f.names, func(n string) bool { return n == name })
}

// Select returns a new frame containing only the listed columns, in the
// listed order. Names that do not exist in the frame are skipped. Column
// data is copied, so the result is independent of the receiver.
func (f *Frame) Select(names []string) *Frame {
	out := &Frame{
		names: make([]string, 0, len(names)),
		cols:  make(map[string][]float64, len(names)),
		rows:  f.rows,
	}
	for _, name := range names {
		values, ok := f.cols[name]
		if !ok {
			continue
		}
		if _, dup := out.cols[name]; dup {
			continue
		}
		out.names = append(out.names, name)
		out.cols[name] = slices.Clone(values)
	}
	if len(out.names) == 0 {
		out.rows = 0
	}
	return out
}

// Filter returns a new frame retaining only the rows where keep is true.
// The mask must be aligned to the frame's rows.
func (f *Frame) Filter(keep []bool) (*Frame, error) {
	if len(keep) != f.rows {
		return nil, fmt.Errorf("mask has %d entries, frame has %d rows", len(keep), f.rows)
	}
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	out := &Frame{
		names: slices.Clone(f.names),
		cols:  make(map[string][]float64, len(f.names)),
		rows:  kept,
	}
	for _, name := range f.names {
		src := f.cols[name]
		dst := make([]float64, 0, kept)
		for i, k := range keep {
			if k {
				dst = append(dst, src[i])
			}
		}
		out.cols[name] = dst
	}
	return out, nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		names: slices.Clone(f.names),
		cols:  make(map[string][]float64, len(f.names)),
		rows:  f.rows,
	}
	for name, values := range f.cols {
		out.cols[name] = slices.Clone(values)
	}
	return out
}
