package experiment

import "iter"

// Filter restricts a traversal. Each non-empty field must match its label
// exactly (experiment label, condition name, well label); there is no
// pattern matching.
type Filter struct {
	Experiment string
	Condition  string
	Well       string
}

func (f Filter) matches(e *Experiment, condition string, w *Well) bool {
	if f.Experiment != "" && f.Experiment != e.Label {
		return false
	}
	if f.Condition != "" && f.Condition != condition {
		return false
	}
	if f.Well != "" && f.Well != w.Label {
		return false
	}
	return true
}

// Visit is one (experiment, condition, well) triple of a traversal.
type Visit struct {
	Experiment *Experiment
	Condition  string
	Well       *Well
}

// Wells iterates every (experiment, condition, well) triple in assembly
// order: experiment order, then condition order within the experiment,
// then well order within the condition. The sequence is lazy, restartable
// and read-only; each range starts a fresh traversal.
func (c Collection) Wells(f Filter) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		for _, e := range c {
			for i := range e.Conditions {
				cond := &e.Conditions[i]
				for _, w := range cond.Wells {
					if !f.matches(e, cond.Name, w) {
						continue
					}
					if !yield(Visit{Experiment: e, Condition: cond.Name, Well: w}) {
						return
					}
				}
			}
		}
	}
}

// UniqueWells is Wells with physical deduplication: a triple whose well
// shares a PhysicalID with an earlier yielded well is suppressed, however
// the two references are spelled. Wells without a physical identity
// (NewWell) are never suppressed.
func (c Collection) UniqueWells(f Filter) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		seen := make(map[PhysicalID]bool)
		for v := range c.Wells(f) {
			id := v.Well.PhysicalID()
			if id != (PhysicalID{}) {
				if seen[id] {
					continue
				}
				seen[id] = true
			}
			if !yield(v) {
				return
			}
		}
	}
}
