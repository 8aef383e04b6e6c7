package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds the summary of a successful validation.
type ValidationResult struct {
	Valid       bool `json:"valid"`
	Experiments int  `json:"experiments"`
	Conditions  int  `json:"conditions"`
	Wells       int  `json:"wells"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <metadata.yml>",
		Short: "Check a metadata file and its well data files",
		Long: `Validate a metadata file end to end: parse every document, resolve
every well reference against its plate directory, and parse the matched
FCS files. Validation is fail-fast and stops at the first problem.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	collection, err := loadCollection(path, formatter)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	result := ValidationResult{Valid: true, Experiments: len(collection)}
	for _, exp := range collection {
		result.Conditions += len(exp.Conditions)
		for _, cond := range exp.Conditions {
			result.Wells += len(cond.Wells)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s: %d experiment(s), %d condition(s), %d well reference(s)\n",
		path, result.Experiments, result.Conditions, result.Wells)
	return nil
}
