package processing

import (
	"fmt"

	"github.com/roach88/fcmcmp/experiment"
)

// Gate is the filtering specialization of Step.
//
// Gate returns a keep mask aligned to the well's rows: true rows are
// retained, the rest are discarded. The framework applies the mask and
// replaces the well's frame; metadata is untouched. A Gate may mutate the
// well's frame through MutableData before returning its mask (GateSmallCells
// uses this to retain its derived size column).
type Gate interface {
	Name() string
	Gate(*experiment.Well) ([]bool, error)
}

// gateStep adapts a Gate to the Step interface.
type gateStep struct {
	BaseStep
	g Gate
}

// GateStep wraps a Gate as a Step.
func GateStep(g Gate) Step { return gateStep{g: g} }

func (s gateStep) Name() string { return s.g.Name() }

func (s gateStep) ProcessWell(w *experiment.Well) (WellResult, error) {
	keep, err := s.g.Gate(w)
	if err != nil {
		return InPlace(), err
	}
	filtered, err := w.Data().Filter(keep)
	if err != nil {
		return InPlace(), fmt.Errorf("%s: %w", s.g.Name(), err)
	}
	return Replace(filtered), nil
}

// Pipeline is an ordered list of steps. The zero value is usable.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Add appends a step.
func (p *Pipeline) Add(s Step) { p.steps = append(p.steps, s) }

// AddGate appends a gate, wrapped as a step.
func (p *Pipeline) AddGate(g Gate) { p.Add(GateStep(g)) }

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// Reset removes all steps.
func (p *Pipeline) Reset() { p.steps = nil }

// Run applies every step to the collection, in the order the steps were
// added. The first hook error aborts the remaining steps and propagates
// unmodified.
func (p *Pipeline) Run(c experiment.Collection) error {
	for _, s := range p.steps {
		if err := Apply(s, c); err != nil {
			return err
		}
	}
	return nil
}

// Default is the pipeline that built-in step constructors register with.
// Construction order is execution order.
var Default = NewPipeline()

// Run applies every step registered with Default, in registration order.
func Run(c experiment.Collection) error { return Default.Run(c) }

// Reset clears the Default pipeline. Tests that construct built-in steps
// should Reset first for isolation.
func Reset() { Default.Reset() }
