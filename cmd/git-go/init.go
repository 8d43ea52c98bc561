package main

import (
	"fmt"
	"io"

	git "github.com/gitcore/git-go"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty Git repository",
		Args:  cobra.NoArgs,
	}

	initialBranch := cmd.Flags().StringP("initial-branch", "b", "", "Use the specified name for the initial branch in the newly created repository.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return initCmd(cmd.OutOrStdout(), cfg, *initialBranch)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *flags, initialBranch string) error {
	_, err := git.InitRepositoryWithOptions(cfg.C, git.InitOptions{
		InitialBranchName: initialBranch,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Initialized git directory")
	return nil
}
