package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gitcore/git-go/ginternals/object"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newHashObjectCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "Compute object ID and optionally create a blob from a file",
		Args:  cobra.ExactArgs(1),
	}

	write := cmd.Flags().BoolP("write", "w", false, "Actually write the object into the object database.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *flags, filePath string, write bool) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	o := object.New(object.TypeBlob, content)
	if write {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		if _, err = r.WriteObject(o); err != nil {
			return xerrors.Errorf("could not write %s: %w", filePath, err)
		}
	}

	fmt.Fprintln(out, o.ID().String())
	return nil
}
