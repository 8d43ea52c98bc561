package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newWriteTreeCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "Create a tree object from the current working directory",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeTreeCmd(cmd.OutOrStdout(), cfg)
	}
	return cmd
}

func writeTreeCmd(out io.Writer, cfg *flags) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	tree, err := r.WriteWorkingTree()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, tree.ID().String())
	return nil
}
