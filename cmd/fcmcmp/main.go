// Command fcmcmp loads flow cytometry experiment metadata files and
// reports on the experiments, conditions, and wells they describe.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/fcmcmp/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
