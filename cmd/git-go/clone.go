package main

import (
	"fmt"
	"io"

	git "github.com/gitcore/git-go"
	"github.com/spf13/cobra"
)

func newCloneCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone URL DIRECTORY",
		Short: "Clone a repository into a new directory",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cloneCmd(cmd.OutOrStdout(), args[0], args[1])
	}
	return cmd
}

func cloneCmd(out io.Writer, url, path string) error {
	_, summary, err := git.CloneRepository(url, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Cloning into '%s'...\n", path)
	fmt.Fprintf(out, "Received %d objects on %s\n", summary.Objects, summary.DefaultBranch)
	if summary.SkippedDeltas > 0 {
		fmt.Fprintf(out, "warning: %d ofs-delta objects could not be reconstructed\n", summary.SkippedDeltas)
	}
	return nil
}
