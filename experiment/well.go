package experiment

import (
	"github.com/roach88/fcmcmp/fcs"
	"github.com/roach88/fcmcmp/frame"
)

// Well is one reference to a physical well.
//
// Label is the reference text as written in the metadata file, not the
// physical identity: "foo/A1" and "A1" can be distinct labels for the same
// physical well. Meta is the instrument keyword map, shared between every
// reference to the same physical well and treated as read-only.
//
// The frame starts out shared between all references to one physical well
// and becomes private on first write; see Data, MutableData and SetData.
type Well struct {
	Label string
	Meta  fcs.Metadata

	data   *frame.Frame
	shared bool
	id     PhysicalID
}

// NewWell creates a standalone well, typically for tests or for callers
// assembling collections by hand. The well owns its frame outright and has
// no physical identity.
func NewWell(label string, meta fcs.Metadata, data *frame.Frame) *Well {
	if meta == nil {
		meta = fcs.Metadata{}
	}
	return &Well{Label: label, Meta: meta, data: data}
}

// newSharedWell creates one reference wrapper around a loaded well. The
// frame stays shared until the first write through this wrapper.
func newSharedWell(label string, id PhysicalID, meta fcs.Metadata, data *frame.Frame) *Well {
	return &Well{Label: label, Meta: meta, data: data, shared: true, id: id}
}

// Data returns the well's current frame. The frame may be shared with
// other references to the same physical well; callers must not mutate it
// directly; use MutableData or SetData.
func (w *Well) Data() *frame.Frame { return w.data }

// MutableData returns a frame safe to mutate in place. If the frame is
// still shared with other references it is cloned first, so the mutation
// affects only this reference's view.
func (w *Well) MutableData() *frame.Frame {
	if w.shared {
		w.data = w.data.Clone()
		w.shared = false
	}
	return w.data
}

// SetData replaces the well's frame for this reference only.
func (w *Well) SetData(f *frame.Frame) {
	w.data = f
	w.shared = false
}

// PhysicalID returns the well's physical identity. Wells created with
// NewWell have the zero identity.
func (w *Well) PhysicalID() PhysicalID { return w.id }

// Condition is one named group of wells within an experiment. Condition
// names are caller-defined; "with"/"without" is convention, not schema.
type Condition struct {
	Name  string
	Wells []*Well
}

// Experiment is one document of the metadata file: a label, its
// conditions in document order, and any passthrough fields.
type Experiment struct {
	// Label identifies the experiment within its file.
	Label string

	// Conditions holds the well groupings in document order.
	Conditions []Condition

	// Extra carries every document field other than label and wells,
	// verbatim, for consumption by processing steps and calling code.
	Extra map[string]any
}

// Condition returns the named condition, or nil if absent.
func (e *Experiment) Condition(name string) *Condition {
	for i := range e.Conditions {
		if e.Conditions[i].Name == name {
			return &e.Conditions[i]
		}
	}
	return nil
}

// Collection is an ordered sequence of experiments, one per document,
// preserving document order.
type Collection []*Experiment
