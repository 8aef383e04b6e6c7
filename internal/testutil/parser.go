package testutil

import (
	"sync"

	"github.com/roach88/fcmcmp/fcs"
	"github.com/roach88/fcmcmp/frame"
)

// CountingParser wraps a Parser and counts Parse invocations per path.
//
// Used to assert the single-load guarantee: however many references point
// at one physical well, the underlying parser must run exactly once.
//
// Thread-safe: counts are mutex-protected so concurrent loader tests can
// share one instance.
type CountingParser struct {
	Inner fcs.Parser

	mu    sync.Mutex
	calls map[string]int
	total int
}

// NewCountingParser wraps inner with call counting.
func NewCountingParser(inner fcs.Parser) *CountingParser {
	return &CountingParser{Inner: inner, calls: make(map[string]int)}
}

// Parse delegates to the inner parser and records the call.
func (p *CountingParser) Parse(path string) (*frame.Frame, fcs.Metadata, error) {
	p.mu.Lock()
	p.calls[path]++
	p.total++
	p.mu.Unlock()
	return p.Inner.Parse(path)
}

// Total returns the total number of Parse calls.
func (p *CountingParser) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Calls returns the number of Parse calls for one path.
func (p *CountingParser) Calls(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

// FailingParser returns Err from every Parse call.
type FailingParser struct {
	Err error
}

// Parse always fails.
func (p FailingParser) Parse(string) (*frame.Frame, fcs.Metadata, error) {
	return nil, nil, p.Err
}
