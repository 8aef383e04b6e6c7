package processing

import (
	"fmt"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/fcmcmp/experiment"
)

// Channel and keyword names the built-in steps depend on. These follow
// the common instrument export conventions.
const (
	// TimeChannel is the elapsed-time channel, in $TIMESTEP ticks.
	TimeChannel = "Time"

	// ForwardScatterChannel and SideScatterChannel are the area channels
	// the size estimate is derived from.
	ForwardScatterChannel = "FSC-A"
	SideScatterChannel    = "SSC-A"

	// SizeChannel is the derived size estimate column that GateSmallCells
	// can retain.
	SizeChannel = "FSC-A + m * SSC-A"

	// TimestepKeyword is the instrument keyword giving the Time channel's
	// tick length in seconds.
	TimestepKeyword = "$TIMESTEP"
)

// sizeSlope is m in the size estimate FSC-A + m * SSC-A.
const sizeSlope = 1.0

// GateEarlyEvents discards events recorded during the first
// ThrowawaySecs seconds of a well, counted from the well's first event.
// Useful when the instrument needs a moment to stabilize after a well
// change.
//
// Requires the Time channel and the $TIMESTEP metadata keyword.
type GateEarlyEvents struct {
	ThrowawaySecs float64
}

// NewGateEarlyEvents creates the gate and registers it with the Default
// pipeline.
func NewGateEarlyEvents(throwawaySecs float64) *GateEarlyEvents {
	g := &GateEarlyEvents{ThrowawaySecs: throwawaySecs}
	Default.AddGate(g)
	return g
}

// Name implements Gate.
func (g *GateEarlyEvents) Name() string { return "gate_early_events" }

// Gate implements Gate. The keep mask retains rows whose elapsed time,
// (Time - Time[0]) * $TIMESTEP, is at least ThrowawaySecs.
func (g *GateEarlyEvents) Gate(w *experiment.Well) ([]bool, error) {
	times, ok := w.Data().Column(TimeChannel)
	if !ok {
		return nil, fmt.Errorf("%s: well %q has no %q channel", g.Name(), w.Label, TimeChannel)
	}
	raw, ok := w.Meta[TimestepKeyword]
	if !ok {
		return nil, fmt.Errorf("%s: well %q has no %s keyword", g.Name(), w.Label, TimestepKeyword)
	}
	timestep, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: well %q: malformed %s %q", g.Name(), w.Label, TimestepKeyword, raw)
	}

	keep := make([]bool, len(times))
	if len(times) == 0 {
		return keep, nil
	}
	t0 := times[0]
	for i, t := range times {
		keep[i] = (t-t0)*timestep >= g.ThrowawaySecs
	}
	return keep, nil
}

// GateSmallCells discards events below a per-well size percentile.
//
// The size estimate is FSC-A + m * SSC-A. Threshold is a percentile of
// the well's own size distribution (0-100), so the absolute cutoff adapts
// to each well. With SaveSizeCol the derived column is appended to the
// well's data under SizeChannel and survives the gate.
type GateSmallCells struct {
	Threshold   float64
	SaveSizeCol bool
}

// NewGateSmallCells creates the gate and registers it with the Default
// pipeline.
func NewGateSmallCells(threshold float64) *GateSmallCells {
	g := &GateSmallCells{Threshold: threshold}
	Default.AddGate(g)
	return g
}

// Name implements Gate.
func (g *GateSmallCells) Name() string { return "gate_small_cells" }

// Gate implements Gate.
func (g *GateSmallCells) Gate(w *experiment.Well) ([]bool, error) {
	if g.Threshold < 0 || g.Threshold > 100 {
		return nil, fmt.Errorf("%s: threshold %v out of range [0, 100]", g.Name(), g.Threshold)
	}
	data := w.Data()
	fsc, ok := data.Column(ForwardScatterChannel)
	if !ok {
		return nil, fmt.Errorf("%s: well %q has no %q channel", g.Name(), w.Label, ForwardScatterChannel)
	}
	ssc, ok := data.Column(SideScatterChannel)
	if !ok {
		return nil, fmt.Errorf("%s: well %q has no %q channel", g.Name(), w.Label, SideScatterChannel)
	}

	size := make([]float64, len(fsc))
	for i := range fsc {
		size[i] = fsc[i] + sizeSlope*ssc[i]
	}

	if g.SaveSizeCol {
		if err := w.MutableData().SetColumn(SizeChannel, slices.Clone(size)); err != nil {
			return nil, fmt.Errorf("%s: %w", g.Name(), err)
		}
	}

	keep := make([]bool, len(size))
	if len(size) == 0 {
		return keep, nil
	}
	sorted := slices.Clone(size)
	slices.Sort(sorted)
	cutoff := stat.Quantile(g.Threshold/100, stat.LinInterp, sorted, nil)
	for i, s := range size {
		keep[i] = s >= cutoff
	}
	return keep, nil
}

// GateNonPositiveEvents discards events where any of the listed channels
// is zero or negative. An empty channel list checks every channel.
// Compose before LogTransformation.
type GateNonPositiveEvents struct {
	Channels []string
}

// NewGateNonPositiveEvents creates the gate and registers it with the
// Default pipeline.
func NewGateNonPositiveEvents(channels ...string) *GateNonPositiveEvents {
	g := &GateNonPositiveEvents{Channels: channels}
	Default.AddGate(g)
	return g
}

// Name implements Gate.
func (g *GateNonPositiveEvents) Name() string { return "gate_non_positive_events" }

// Gate implements Gate.
func (g *GateNonPositiveEvents) Gate(w *experiment.Well) ([]bool, error) {
	data := w.Data()
	channels := g.Channels
	if len(channels) == 0 {
		channels = data.Columns()
	}

	keep := make([]bool, data.NumRows())
	for i := range keep {
		keep[i] = true
	}
	for _, name := range channels {
		values, ok := data.Column(name)
		if !ok {
			return nil, fmt.Errorf("%s: well %q has no %q channel", g.Name(), w.Label, name)
		}
		for i, v := range values {
			if v <= 0 {
				keep[i] = false
			}
		}
	}
	return keep, nil
}
