package git

import (
	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"golang.org/x/xerrors"
)

// CommitTree creates and persists a commit pointing at the given tree
func (r *Repository) CommitTree(treeID ginternals.Oid, author object.Signature, opts *object.CommitOptions) (*object.Commit, error) {
	// the tree must be in the odb, a commit pointing at nothing would
	// corrupt the repository
	found, err := r.dotGit.HasObject(treeID)
	if err != nil {
		return nil, xerrors.Errorf("could not check tree %s: %w", treeID.String(), err)
	}
	if !found {
		return nil, xerrors.Errorf("tree %s: %w", treeID.String(), ginternals.ErrObjectNotFound)
	}

	c := object.NewCommit(treeID, author, opts)
	if _, err := r.dotGit.WriteObject(c.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not write the commit to the odb: %w", err)
	}
	return c, nil
}
