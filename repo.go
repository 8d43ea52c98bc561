// Package git contains a minimal git client: content-addressed object
// storage, trees, commits, and cloning over the smart-HTTP protocol
package git

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gitcore/git-go/backend"
	"github.com/gitcore/git-go/backend/fsbackend"
	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/gitcore/git-go/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// List of errors returned by the Repository struct
var (
	ErrRepositoryNotExist = errors.New("repository does not exist")
)

// Repository represents a git repository.
// A git repository is a directory with a .git/ folder inside, which
// tracks all changes made to the files of the project
type Repository struct {
	repoRoot   string
	dotGitPath string
	dotGit     backend.Backend
	wt         afero.Fs
}

// InitOptions contains all the optional data used to initialize a
// repository
type InitOptions struct {
	// InitialBranchName is the name of the default branch.
	// Defaults to "main"
	InitialBranchName string
	// GitBackend represents the underlying backend to use to init the
	// repository and interact with the odb.
	// By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree.
	// By default the filesystem will be used
	WorkingTreeBackend afero.Fs
}

// InitRepository initializes a new git repository by creating the .git
// directory in the given path, which is where almost everything that
// git stores and manipulates is located
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain
func InitRepository(repoPath string) (*Repository, error) {
	return InitRepositoryWithOptions(repoPath, InitOptions{})
}

// InitRepositoryWithOptions initializes a new git repository by
// creating the .git directory in the given path
func InitRepositoryWithOptions(repoPath string, opts InitOptions) (*Repository, error) {
	r := newRepository(repoPath, opts.GitBackend, opts.WorkingTreeBackend)

	branch := opts.InitialBranchName
	if branch == "" {
		branch = ginternals.Main
	}
	if !ginternals.IsRefNameValid(branch) {
		return nil, xerrors.Errorf("branch %q: %w", branch, ginternals.ErrRefNameInvalid)
	}

	if err := r.dotGit.Init(); err != nil {
		return nil, err
	}

	// a fresh repository has no commit, so HEAD starts as a symbolic
	// reference to an unborn branch
	ref := ginternals.NewSymbolicReference(ginternals.Head, gitpath.LocalBranch(branch))
	if err := r.dotGit.WriteReference(ref); err != nil {
		return nil, err
	}

	return r, nil
}

// OpenOptions contains all the optional data used to open a repository
type OpenOptions struct {
	// GitBackend represents the underlying backend to use to interact
	// with the odb.
	// By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree.
	// By default the filesystem will be used
	WorkingTreeBackend afero.Fs
}

// OpenRepository loads an existing git repository and returns a
// Repository instance
func OpenRepository(repoPath string) (*Repository, error) {
	return OpenRepositoryWithOptions(repoPath, OpenOptions{})
}

// OpenRepositoryWithOptions loads an existing git repository and
// returns a Repository instance
func OpenRepositoryWithOptions(repoPath string, opts OpenOptions) (*Repository, error) {
	r := newRepository(repoPath, opts.GitBackend, opts.WorkingTreeBackend)

	// we use HEAD to check whether a repository actually lives at
	// this path: every repository has one, from its very first second
	_, err := r.wt.Stat(filepath.Join(r.dotGitPath, gitpath.HEADPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("no repository at %s: %w", repoPath, ErrRepositoryNotExist)
		}
		return nil, xerrors.Errorf("could not check %s: %w", r.dotGitPath, err)
	}
	return r, nil
}

func newRepository(repoPath string, odb backend.Backend, wt afero.Fs) *Repository {
	r := &Repository{
		repoRoot:   repoPath,
		dotGitPath: filepath.Join(repoPath, gitpath.DotGitPath),
		dotGit:     odb,
		wt:         wt,
	}
	if r.wt == nil {
		r.wt = afero.NewOsFs()
	}
	if r.dotGit == nil {
		r.dotGit = fsbackend.NewWithFs(r.dotGitPath, r.wt)
	}
	return r
}

// Root returns the path of the directory containing the working tree
func (r *Repository) Root() string {
	return r.repoRoot
}

// GetObject returns the object matching the given oid
func (r *Repository) GetObject(oid ginternals.Oid) (*object.Object, error) {
	return r.dotGit.Object(oid)
}

// HasObject returns whether the given object exists in the odb
func (r *Repository) HasObject(oid ginternals.Oid) (bool, error) {
	return r.dotGit.HasObject(oid)
}

// WriteObject writes the given object to the odb and returns its oid
func (r *Repository) WriteObject(o *object.Object) (ginternals.Oid, error) {
	return r.dotGit.WriteObject(o)
}

// GetReference returns the reference matching the given name
func (r *Repository) GetReference(name string) (*ginternals.Reference, error) {
	return r.dotGit.Reference(name)
}
