package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/fcmcmp/experiment"
)

// WellInfo describes one well visit for machine-readable output.
type WellInfo struct {
	Experiment string `json:"experiment"`
	Condition  string `json:"condition"`
	Well       string `json:"well"`
	Events     int    `json:"events"`
	Channels   int    `json:"channels"`
}

// wellsOptions holds flags local to the wells command.
type wellsOptions struct {
	Unique     bool
	Experiment string
	Condition  string
	Well       string
}

// NewWellsCommand creates the wells command.
func NewWellsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &wellsOptions{}

	cmd := &cobra.Command{
		Use:   "wells <metadata.yml>",
		Short: "List the wells referenced by a metadata file",
		Long: `List every well reference in assembly order: experiments in file
order, conditions in document order, wells in listed order. With --unique,
repeated references to the same physical well are listed once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWells(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Unique, "unique", false, "list each physical well once")
	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "only wells of this experiment")
	cmd.Flags().StringVar(&opts.Condition, "condition", "", "only wells of this condition")
	cmd.Flags().StringVar(&opts.Well, "well", "", "only wells with this label")

	return cmd
}

func runWells(rootOpts *RootOptions, opts *wellsOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	collection, err := loadCollection(path, formatter)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	filter := experiment.Filter{
		Experiment: opts.Experiment,
		Condition:  opts.Condition,
		Well:       opts.Well,
	}
	seq := collection.Wells(filter)
	if opts.Unique {
		seq = collection.UniqueWells(filter)
	}

	infos := []WellInfo{}
	for v := range seq {
		infos = append(infos, WellInfo{
			Experiment: v.Experiment.Label,
			Condition:  v.Condition,
			Well:       v.Well.Label,
			Events:     v.Well.Data().NumRows(),
			Channels:   v.Well.Data().NumCols(),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EXPERIMENT\tCONDITION\tWELL\tEVENTS\tCHANNELS")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			info.Experiment, info.Condition, info.Well, info.Events, info.Channels)
	}
	return w.Flush()
}
