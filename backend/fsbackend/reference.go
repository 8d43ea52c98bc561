package fsbackend

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/internal/errutil"
	"github.com/gitcore/git-go/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Reference returns a stored reference from its name.
// ginternals.ErrRefNotFound is returned if the reference doesn't exist
func (b *Backend) Reference(name string) (*ginternals.Reference, error) {
	var packedRefs map[string]string

	finder := func(name string) ([]byte, error) {
		data, err := afero.ReadFile(b.fs, b.systemPath(name))
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, xerrors.Errorf("could not read reference content: %w", err)
			}
			// if the reference can't be found on disk, it might be
			// in the packed-refs file
			if packedRefs == nil {
				packedRefs, err = b.parsePackedRefs()
				if err != nil {
					return nil, xerrors.Errorf("couldn't load packed-refs: %w", err)
				}
			}
			sha, ok := packedRefs[name]
			if !ok {
				return nil, xerrors.Errorf(`ref "%s": %w`, name, ginternals.ErrRefNotFound)
			}
			return []byte(sha), nil
		}
		return data, nil
	}
	return ginternals.ResolveReference(name, finder)
}

// systemPath returns a path from a ref name
// Ex.: On windows refs/heads/main would return refs\heads\main
func (b *Backend) systemPath(name string) string {
	return filepath.Join(b.root, filepath.FromSlash(name))
}

// parsePackedRefs parses the packed-refs file and returns a map
// refName => Oid
// https://git-scm.com/docs/git-pack-refs
func (b *Backend) parsePackedRefs() (refs map[string]string, err error) {
	refs = map[string]string{}
	f, err := b.fs.Open(filepath.Join(b.root, gitpath.PackedRefsPath))
	if err != nil {
		// if the file doesn't exist we just return an empty map
		if os.IsNotExist(err) {
			return refs, nil
		}
		return nil, xerrors.Errorf("could not open %s: %w", gitpath.PackedRefsPath, err)
	}
	defer errutil.Close(f, &err)

	sc := bufio.NewScanner(f)
	for i := 1; sc.Scan(); i++ {
		line := sc.Text()
		// we skip empty lines, comments, and annotated tag commits
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		// We expect data to have the format:
		// "oid ref-name"
		parts := strings.Split(line, " ")
		if len(parts) != 2 {
			return nil, xerrors.Errorf("unexpected data line %d: %w", i, ginternals.ErrPackedRefInvalid)
		}
		refs[parts[1]] = parts[0]
	}

	if sc.Err() != nil {
		return nil, xerrors.Errorf("could not parse %s: %w", gitpath.PackedRefsPath, sc.Err())
	}

	return refs, nil
}

// WriteReference writes the given reference on disk. If the
// reference already exists it will be overwritten
func (b *Backend) WriteReference(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	target := ""
	switch ref.Type() {
	case ginternals.SymbolicReference:
		target = fmt.Sprintf("ref: %s\n", ref.SymbolicTarget())
	case ginternals.OidReference:
		target = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return xerrors.Errorf("reference type %d: %w", ref.Type(), ginternals.ErrUnknownRefType)
	}

	p := b.systemPath(ref.Name())
	if err := b.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return xerrors.Errorf("could not create the directory holding the reference: %w", err)
	}
	if err := afero.WriteFile(b.fs, p, []byte(target), 0o644); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}
	return nil
}
