// Package processing applies reusable transformation and filtering steps
// over a loaded experiment collection.
//
// A Step has two hooks: ProcessExperiment runs once per experiment and
// mutates it in place; ProcessWell runs once per well and reports through
// its WellResult whether the well's frame was mutated in place or should
// be replaced. Embed BaseStep to get no-op defaults and override only the
// hook you need.
//
// A Gate is the filtering specialization: it returns a keep mask aligned
// to the well's rows and the framework applies it, replacing the well's
// frame with the reduced one. Gating never touches well metadata.
//
// PIPELINES:
//
// Steps run through a Pipeline in the order they were added. The package
// also keeps a Default pipeline: every built-in step constructor (the
// NewGate*/NewLog*/NewKeep* functions) registers its step with Default as
// a side effect of construction, whether or not the step is ever invoked
// directly. Run(collection) drives Default; callers who prefer explicit
// wiring build their own Pipeline from the step values instead and skip
// the constructors.
package processing
