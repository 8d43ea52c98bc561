package main

import (
	"fmt"
	"io"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCatFileCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat-file OBJECT",
		Short: "Provide content information for repository objects",
		Args:  cobra.ExactArgs(1),
	}

	prettyPrint := cmd.Flags().BoolP("p", "p", false, "Pretty-print the contents of <object> based on its type.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return catFileCmd(cmd.OutOrStdout(), cfg, args[0], *prettyPrint)
	}
	return cmd
}

func catFileCmd(out io.Writer, cfg *flags, objectName string, prettyPrint bool) error {
	if !prettyPrint {
		return xerrors.New("option -p is required")
	}

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

	switch o.Type() {
	case object.TypeCommit:
		c, err := o.AsCommit()
		if err != nil {
			return xerrors.Errorf("could not get commit: %w", err)
		}
		fmt.Fprintf(out, "tree %s\n", c.TreeID().String())
		for _, id := range c.ParentIDs() {
			fmt.Fprintf(out, "parent %s\n", id.String())
		}
		fmt.Fprintf(out, "author %s\n", c.Author().String())
		fmt.Fprintf(out, "committer %s\n", c.Committer().String())
		fmt.Fprintln(out, "")
		fmt.Fprint(out, c.Message())
	case object.TypeTree:
		tree, err := o.AsTree()
		if err != nil {
			return xerrors.Errorf("could not get tree: %w", err)
		}
		for _, e := range tree.Entries() {
			fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), e.Path)
		}
	case object.TypeBlob, object.TypeTag:
		fmt.Fprint(out, string(o.Bytes()))
	case object.ObjectDeltaOFS, object.ObjectDeltaRef:
		fallthrough
	default:
		return xerrors.Errorf("pretty-print not supported for type %s", o.Type().String())
	}
	return nil
}
