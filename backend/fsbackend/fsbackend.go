// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"path/filepath"

	"github.com/gitcore/git-go/backend"
	"github.com/gitcore/git-go/internal/cache"
	"github.com/gitcore/git-go/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// amount of decoded objects kept in memory to speed up repeated reads
const objectCacheSize = 1000

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// Backend is a Backend implementation that uses the filesystem to
// store data
type Backend struct {
	root  string
	fs    afero.Fs
	cache *cache.LRU
}

// New returns a new Backend object rooted at the given .git directory,
// using the OS filesystem
func New(dotGitPath string) *Backend {
	return NewWithFs(dotGitPath, afero.NewOsFs())
}

// NewWithFs returns a new Backend object rooted at the given .git
// directory on the given filesystem
func NewWithFs(dotGitPath string, fs afero.Fs) *Backend {
	return &Backend{
		root:  dotGitPath,
		fs:    fs,
		cache: cache.NewLRU(objectCacheSize),
	}
}

// Root returns the path of the .git directory backing this Backend
func (b *Backend) Root() string {
	return b.root
}

// Init initializes a repository
func (b *Backend) Init() error {
	// Create the directories
	dirs := []string{
		gitpath.ObjectsPath,
		gitpath.RefsTagsPath,
		gitpath.RefsHeadsPath,
		gitpath.ObjectsInfoPath,
		gitpath.ObjectsPackPath,
	}
	for _, d := range dirs {
		fullPath := filepath.Join(b.root, d)
		if err := b.fs.MkdirAll(fullPath, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	// Create the files with the default content
	// (taken from a repo created on github)
	files := []struct {
		path    string
		content []byte
	}{
		{
			path:    gitpath.DescriptionPath,
			content: []byte("Unnamed repository; edit this file 'description' to name the repository.\n"),
		},
	}
	for _, f := range files {
		fullPath := filepath.Join(b.root, f.path)
		if err := afero.WriteFile(b.fs, fullPath, f.content, 0o644); err != nil {
			return xerrors.Errorf("could not create file %s: %w", f.path, err)
		}
	}

	if err := b.setDefaultCfg(); err != nil {
		return xerrors.Errorf("could not set the default config: %w", err)
	}

	return nil
}
