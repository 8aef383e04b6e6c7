package processing

import (
	"fmt"
	"math"

	"github.com/roach88/fcmcmp/experiment"
)

// LogTransformation replaces each listed channel's values with their
// base-10 logarithm, in place. It removes no rows and requires every
// value to already be positive; compose after GateNonPositiveEvents when
// the data can contain zeros or negatives.
type LogTransformation struct {
	BaseStep
	Channels []string
}

// NewLogTransformation creates the step and registers it with the
// Default pipeline.
func NewLogTransformation(channels ...string) *LogTransformation {
	s := &LogTransformation{Channels: channels}
	Default.Add(s)
	return s
}

// Name implements Step.
func (s *LogTransformation) Name() string { return "log_transformation" }

// ProcessWell implements Step. Validation runs before mutation so a
// failing well is left untouched.
func (s *LogTransformation) ProcessWell(w *experiment.Well) (WellResult, error) {
	data := w.Data()
	for _, name := range s.Channels {
		values, ok := data.Column(name)
		if !ok {
			return InPlace(), fmt.Errorf("%s: well %q has no %q channel", s.Name(), w.Label, name)
		}
		for i, v := range values {
			if v <= 0 {
				return InPlace(), fmt.Errorf(
					"%s: well %q channel %q has non-positive value %v at row %d (gate non-positive events first)",
					s.Name(), w.Label, name, v, i)
			}
		}
	}

	mutable := w.MutableData()
	for _, name := range s.Channels {
		values, _ := mutable.Column(name)
		for i := range values {
			values[i] = math.Log10(values[i])
		}
	}
	return InPlace(), nil
}

// KeepRelevantChannels drops every channel not explicitly listed. Handy
// when more channels were collected than the analysis needs. Listed
// channels missing from a well are skipped; metadata is untouched.
type KeepRelevantChannels struct {
	BaseStep
	Channels []string
}

// NewKeepRelevantChannels creates the step and registers it with the
// Default pipeline.
func NewKeepRelevantChannels(channels ...string) *KeepRelevantChannels {
	s := &KeepRelevantChannels{Channels: channels}
	Default.Add(s)
	return s
}

// Name implements Step.
func (s *KeepRelevantChannels) Name() string { return "keep_relevant_channels" }

// ProcessWell implements Step.
func (s *KeepRelevantChannels) ProcessWell(w *experiment.Well) (WellResult, error) {
	return Replace(w.Data().Select(s.Channels)), nil
}
