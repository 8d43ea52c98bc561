package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/gitcore/git-go/internal/env"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

// default identity used when the environment doesn't provide one
const (
	placeholderName  = "A U Thor"
	placeholderEmail = "author@example.com"
)

func newCommitTreeCmd(cfg *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-tree TREE",
		Short: "Create a new commit object",
		Args:  cobra.ExactArgs(1),
	}

	parents := cmd.Flags().StringArrayP("parent", "p", nil, "Each -p indicates the id of a parent commit object.")
	message := cmd.Flags().StringP("message", "m", "", "A paragraph in the commit log message.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitTreeCmd(cmd.OutOrStdout(), cfg, args[0], *parents, *message)
	}
	return cmd
}

func commitTreeCmd(out io.Writer, cfg *flags, treeName string, parents []string, message string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	treeID, err := ginternals.NewOidFromStr(treeName)
	if err != nil {
		return xerrors.Errorf("not a valid object name %s: %w", treeName, err)
	}

	parentIDs := make([]ginternals.Oid, 0, len(parents))
	for _, p := range parents {
		oid, err := ginternals.NewOidFromStr(p)
		if err != nil {
			return xerrors.Errorf("not a valid object name %s: %w", p, err)
		}
		parentIDs = append(parentIDs, oid)
	}

	c, err := r.CommitTree(treeID, signatureFromEnv(cfg.env), &object.CommitOptions{
		Message:   message,
		ParentsID: parentIDs,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, c.ID().String())
	return nil
}

// signatureFromEnv builds the author identity from GIT_AUTHOR_NAME,
// GIT_AUTHOR_EMAIL, and GIT_AUTHOR_DATE (unix seconds), falling back
// to a fixed placeholder name and email, and to the current time
func signatureFromEnv(e *env.Env) object.Signature {
	name := e.Get("GIT_AUTHOR_NAME")
	if name == "" {
		name = placeholderName
	}
	email := e.Get("GIT_AUTHOR_EMAIL")
	if email == "" {
		email = placeholderEmail
	}

	sig := object.Signature{
		Name:  name,
		Email: email,
		Time:  time.Now(),
	}
	if date := e.Get("GIT_AUTHOR_DATE"); date != "" {
		if ts, err := strconv.ParseInt(date, 10, 64); err == nil {
			sig.Time = time.Unix(ts, 0).UTC()
		}
	}
	return sig
}
