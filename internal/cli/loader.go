package cli

import (
	"log/slog"

	"github.com/roach88/fcmcmp/experiment"
)

// loadCollection loads a metadata file for a CLI command. Loader logs are
// discarded unless verbose mode is on, in which case they go to the
// formatter's diagnostic writer so JSON output stays clean.
func loadCollection(path string, f *OutputFormatter) (experiment.Collection, error) {
	handler := slog.Handler(slog.DiscardHandler)
	if f.Verbose {
		handler = slog.NewTextHandler(f.GetErrWriter(), nil)
	}
	return experiment.LoadExperiments(path, experiment.WithLogger(slog.New(handler)))
}
