package main

import (
	"fmt"
	"io"

	"github.com/gitcore/git-go/ginternals"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newLsTreeCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree TREE",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	nameOnly := cmd.Flags().Bool("name-only", false, "List only filenames, one per line.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsTreeCmd(cmd.OutOrStdout(), cfg, args[0], *nameOnly)
	}
	return cmd
}

func lsTreeCmd(out io.Writer, cfg *flags, objectName string, nameOnly bool) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	oid, err := ginternals.NewOidFromStr(objectName)
	if err != nil {
		return xerrors.Errorf("not a valid object name %s: %w", objectName, err)
	}

	o, err := r.GetObject(oid)
	if err != nil {
		return err
	}
	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	for _, e := range tree.Entries() {
		if nameOnly {
			fmt.Fprintln(out, e.Path)
			continue
		}
		fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), e.Path)
	}
	return nil
}
