package processing

import (
	"github.com/roach88/fcmcmp/experiment"
	"github.com/roach88/fcmcmp/frame"
)

// WellResult tells the framework what to do with a well after
// ProcessWell: leave the (possibly mutated-in-place) frame alone, or
// replace it. The explicit variant avoids the ambiguity of signaling
// replacement with a nil-vs-value return.
type WellResult struct {
	replace *frame.Frame
}

// InPlace reports that the well's frame was mutated in place (or left
// alone) and no replacement is needed.
func InPlace() WellResult { return WellResult{} }

// Replace reports that f should become the well's new frame.
func Replace(f *frame.Frame) WellResult { return WellResult{replace: f} }

// Replacement returns the replacement frame, if any.
func (r WellResult) Replacement() (*frame.Frame, bool) {
	return r.replace, r.replace != nil
}

// Step is a transformation applied uniformly over a collection.
type Step interface {
	// Name identifies the step in errors and logs.
	Name() string

	// ProcessExperiment runs once per experiment, before the
	// experiment's wells are processed. It mutates the experiment in
	// place.
	ProcessExperiment(*experiment.Experiment) error

	// ProcessWell runs once per well reached through the experiment.
	ProcessWell(*experiment.Well) (WellResult, error)
}

// BaseStep provides no-op defaults for both hooks. Embed it and override
// the hook you need; Name is left to the implementer.
type BaseStep struct{}

// ProcessExperiment does nothing.
func (BaseStep) ProcessExperiment(*experiment.Experiment) error { return nil }

// ProcessWell does nothing.
func (BaseStep) ProcessWell(*experiment.Well) (WellResult, error) { return InPlace(), nil }

// Apply runs one step over a collection: ProcessExperiment per
// experiment, then ProcessWell per well in traversal order, applying each
// well's result. Hook errors abort immediately and propagate unmodified.
func Apply(s Step, c experiment.Collection) error {
	for _, e := range c {
		if err := s.ProcessExperiment(e); err != nil {
			return err
		}
		for i := range e.Conditions {
			for _, w := range e.Conditions[i].Wells {
				res, err := s.ProcessWell(w)
				if err != nil {
					return err
				}
				if f, ok := res.Replacement(); ok {
					w.SetData(f)
				}
			}
		}
	}
	return nil
}
