package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fcmcmp/experiment"
)

// InspectReport is the machine-readable form of an inspected collection.
type InspectReport struct {
	Experiments []InspectExperiment `json:"experiments"`
}

// InspectExperiment describes one experiment document.
type InspectExperiment struct {
	Label      string             `json:"label"`
	Conditions []InspectCondition `json:"conditions"`
	Extra      map[string]any     `json:"extra,omitempty"`
}

// InspectCondition describes one condition and its wells.
type InspectCondition struct {
	Name  string        `json:"name"`
	Wells []InspectWell `json:"wells"`
}

// InspectWell describes one well reference.
type InspectWell struct {
	Label    string   `json:"label"`
	Events   int      `json:"events"`
	Channels []string `json:"channels"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <metadata.yml>",
		Short: "Show the full structure of a metadata file",
		Long: `Load a metadata file and print every experiment, condition, and well
along with each well's event count and channel names.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	collection, err := loadCollection(path, formatter)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	report := buildInspectReport(collection)
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	writeInspectText(formatter, report)
	return nil
}

func buildInspectReport(collection experiment.Collection) InspectReport {
	report := InspectReport{Experiments: []InspectExperiment{}}
	for _, exp := range collection {
		ie := InspectExperiment{Label: exp.Label, Extra: exp.Extra}
		for _, cond := range exp.Conditions {
			ic := InspectCondition{Name: cond.Name}
			for _, well := range cond.Wells {
				ic.Wells = append(ic.Wells, InspectWell{
					Label:    well.Label,
					Events:   well.Data().NumRows(),
					Channels: well.Data().Columns(),
				})
			}
			ie.Conditions = append(ie.Conditions, ic)
		}
		report.Experiments = append(report.Experiments, ie)
	}
	return report
}

func writeInspectText(f *OutputFormatter, report InspectReport) {
	for i, exp := range report.Experiments {
		if i > 0 {
			fmt.Fprintln(f.Writer)
		}
		fmt.Fprintf(f.Writer, "experiment %q\n", exp.Label)
		for _, key := range sortedKeys(exp.Extra) {
			fmt.Fprintf(f.Writer, "  %s: %v\n", key, exp.Extra[key])
		}
		for _, cond := range exp.Conditions {
			fmt.Fprintf(f.Writer, "  condition %q (%s)\n", cond.Name, pluralWells(len(cond.Wells)))
			for _, well := range cond.Wells {
				fmt.Fprintf(f.Writer, "    %s: %d events, %d channels (%s)\n",
					well.Label, well.Events, len(well.Channels), strings.Join(well.Channels, ", "))
			}
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pluralWells(n int) string {
	if n == 1 {
		return "1 well"
	}
	return fmt.Sprintf("%d wells", n)
}
