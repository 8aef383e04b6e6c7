package experiment

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/fcmcmp/fcs"
	"github.com/roach88/fcmcmp/frame"
)

// Loader parses physical wells at most once per PhysicalID.
//
// A fresh Loader is created per LoadExperiments call by default: two
// unrelated metadata files may coincidentally share plate paths, and
// re-parsing per call is the safe default. Callers that want cross-call
// sharing can construct one Loader and inject it with WithCache.
//
// Concurrency: loads are guarded per key, not globally. Concurrent
// requests for the same PhysicalID wait for the single in-flight parse;
// requests for unrelated wells proceed independently.
type Loader struct {
	parser fcs.Parser
	logger *slog.Logger
	token  string // load token for log correlation

	mu      sync.Mutex
	entries map[PhysicalID]*loadEntry
}

// loadEntry is one in-flight or completed load. done is closed when the
// parse finishes; waiters then read data/meta/err without locking.
type loadEntry struct {
	done chan struct{}
	data *frame.Frame
	meta fcs.Metadata
	err  error
}

// NewLoader creates a Loader around the given parser. A nil logger uses
// slog.Default(). Each Loader is stamped with a UUIDv7 token that appears
// on its log lines.
func NewLoader(parser fcs.Parser, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	token := uuid.Must(uuid.NewV7()).String()
	return &Loader{
		parser:  parser,
		logger:  logger.With("load_token", token),
		token:   token,
		entries: make(map[PhysicalID]*loadEntry),
	}
}

// Token returns the loader's log correlation token.
func (l *Loader) Token() string { return l.token }

// Load returns the parsed frame and metadata for a physical well,
// parsing the file at most once per PhysicalID for the loader's lifetime.
// Cache hits return the identical frame and metadata objects.
//
// Parse failures are returned as well load errors and are not cached: a
// later Load for the same identity parses again.
func (l *Loader) Load(id PhysicalID, path string) (*frame.Frame, fcs.Metadata, error) {
	l.mu.Lock()
	if e, ok := l.entries[id]; ok {
		l.mu.Unlock()
		<-e.done
		return e.data, e.meta, e.err
	}
	e := &loadEntry{done: make(chan struct{})}
	l.entries[id] = e
	l.mu.Unlock()

	l.logger.Debug("loading well", "well", id.Well, "path", path)

	data, meta, err := l.parser.Parse(path)
	if err != nil {
		e.err = &Error{
			Code:    ErrCodeWellLoad,
			Message: fmt.Sprintf("parsing %s", path),
			Plate:   id.Plate,
			Err:     err,
		}
		// Failed loads are not cached.
		l.mu.Lock()
		delete(l.entries, id)
		l.mu.Unlock()
		close(e.done)
		return nil, nil, e.err
	}

	e.data, e.meta = data, meta
	close(e.done)
	return data, meta, nil
}

// Len returns the number of cached physical wells.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
