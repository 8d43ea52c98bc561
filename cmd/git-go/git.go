package main

import (
	"github.com/gitcore/git-go/internal/env"
	"github.com/spf13/cobra"
)

// flags represents the global flags, shared by all the subcommands
type flags struct {
	// C is a simpler version of git's -C: run as if git was started
	// in the provided path
	// https://git-scm.com/docs/git#Documentation/git.txt--Cltpathgt
	C string

	env *env.Env
}

func newRootCmd(cwd string, e *env.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "git-go",
		Short:         "git implementation in pure Go",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &flags{
		C:   cwd,
		env: e,
	}
	cmd.PersistentFlags().StringVarP(&cfg.C, "C", "C", cwd, "Run as if git was started in the provided path instead of the current working directory.")

	// porcelain
	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newCloneCmd(cfg))

	// plumbing
	cmd.AddCommand(newCatFileCmd(cfg))
	cmd.AddCommand(newHashObjectCmd(cfg))
	cmd.AddCommand(newLsTreeCmd(cfg))
	cmd.AddCommand(newWriteTreeCmd(cfg))
	cmd.AddCommand(newCommitTreeCmd(cfg))

	return cmd
}
