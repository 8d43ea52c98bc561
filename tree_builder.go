package git

import (
	"os"
	"path/filepath"

	"github.com/gitcore/git-go/backend"
	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/gitcore/git-go/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// TreeBuilder is used to build trees
type TreeBuilder struct {
	Backend backend.Backend
	entries map[string]object.TreeEntry
}

// NewTreeBuilder creates a new empty tree builder
func (r *Repository) NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		Backend: r.dotGit,
		entries: map[string]object.TreeEntry{},
	}
}

// Insert inserts a new entry in the tree
func (tb *TreeBuilder) Insert(path string, oid ginternals.Oid, mode object.TreeObjectMode) error {
	if !mode.IsValid() {
		return xerrors.Errorf("mode %o: %w", mode, object.ErrObjectInvalid)
	}

	tb.entries[path] = object.TreeEntry{
		Mode: mode,
		Path: path,
		ID:   oid,
	}
	return nil
}

// Remove removes an entry from the tree
func (tb *TreeBuilder) Remove(path string) {
	delete(tb.entries, path)
}

// Write creates and persists a new Tree object.
// The entries get sorted in the canonical git order, so the same set
// of entries always produces the same tree id
func (tb *TreeBuilder) Write() (*object.Tree, error) {
	entries := make([]object.TreeEntry, 0, len(tb.entries))
	for _, e := range tb.entries {
		entries = append(entries, e)
	}

	t := object.NewTree(entries)
	if _, err := tb.Backend.WriteObject(t.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not write the tree to the odb: %w", err)
	}
	return t, nil
}

// WriteWorkingTree snapshots the whole working directory as a tree
// graph, writing every blob and sub-tree to the odb, and returns the
// root tree. The .git directory is skipped
func (r *Repository) WriteWorkingTree() (*object.Tree, error) {
	return r.writeTreeAt(r.repoRoot)
}

// writeTreeAt serializes the directory at the given path, recursing
// into its subdirectories
func (r *Repository) writeTreeAt(dir string) (*object.Tree, error) {
	infos, err := afero.ReadDir(r.wt, dir)
	if err != nil {
		return nil, xerrors.Errorf("could not list %s: %w", dir, err)
	}

	tb := r.NewTreeBuilder()
	for _, info := range infos {
		name := info.Name()
		fullPath := filepath.Join(dir, name)

		switch {
		case info.IsDir():
			if name == gitpath.DotGitPath {
				continue
			}
			subTree, err := r.writeTreeAt(fullPath)
			if err != nil {
				return nil, err
			}
			if err = tb.Insert(name, subTree.ID(), object.ModeDirectory); err != nil {
				return nil, err
			}
		case info.Mode().IsRegular():
			data, err := afero.ReadFile(r.wt, fullPath)
			if err != nil {
				return nil, xerrors.Errorf("could not read %s: %w", fullPath, err)
			}
			o := object.New(object.TypeBlob, data)
			if _, err = r.dotGit.WriteObject(o); err != nil {
				return nil, xerrors.Errorf("could not write blob for %s: %w", fullPath, err)
			}
			mode := object.ModeFile
			if info.Mode()&0o111 != 0 {
				mode = object.ModeExecutable
			}
			if err = tb.Insert(name, o.ID(), mode); err != nil {
				return nil, err
			}
		default:
			// symlinks, sockets, devices... are not tracked
			continue
		}
	}

	return tb.Write()
}

// CheckoutTree materializes the given tree into the given directory,
// creating it if needed. Existing files are overwritten: the caller is
// expected to target an empty or fresh directory
func (r *Repository) CheckoutTree(treeID ginternals.Oid, dir string) error {
	o, err := r.dotGit.Object(treeID)
	if err != nil {
		return xerrors.Errorf("could not load tree %s: %w", treeID.String(), err)
	}
	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	if err = r.wt.MkdirAll(dir, 0o755); err != nil {
		return xerrors.Errorf("could not create %s: %w", dir, err)
	}

	for _, e := range tree.Entries() {
		target := filepath.Join(dir, e.Path)
		switch e.Mode {
		case object.ModeDirectory:
			if err = r.CheckoutTree(e.ID, target); err != nil {
				return err
			}
		case object.ModeFile, object.ModeExecutable:
			blobObj, err := r.dotGit.Object(e.ID)
			if err != nil {
				return xerrors.Errorf("could not load blob %s for %s: %w", e.ID.String(), target, err)
			}
			perm := os.FileMode(0o644)
			if e.Mode == object.ModeExecutable {
				perm = 0o755
			}
			if err = afero.WriteFile(r.wt, target, blobObj.Bytes(), perm); err != nil {
				return xerrors.Errorf("could not write %s: %w", target, err)
			}
			// WriteFile only applies the permissions on creation, and
			// checkouts are allowed to overwrite
			if err = r.wt.Chmod(target, perm); err != nil {
				return xerrors.Errorf("could not set the mode of %s: %w", target, err)
			}
		default:
			// symlinks and gitlinks are not materialized
			continue
		}
	}
	return nil
}
