package fsbackend

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/gitcore/git-go/internal/errutil"
	"github.com/gitcore/git-go/internal/gitpath"
	"github.com/klauspost/compress/zlib"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// looseObjectPath returns the absolute path of an object:
// .git/objects/first_2_chars_of_sha/remaining_chars_of_sha
// Ex. path of fcfe68a0e44e04bd7fd564fc0b75f1ae457e18b3 is:
// .git/objects/fc/fe68a0e44e04bd7fd564fc0b75f1ae457e18b3
func (b *Backend) looseObjectPath(sha string) string {
	return filepath.Join(b.root, gitpath.ObjectsPath, sha[:2], sha[2:])
}

// Object returns the object that has the given oid.
// ginternals.ErrObjectNotFound is returned if the object doesn't exist
func (b *Backend) Object(oid ginternals.Oid) (*object.Object, error) {
	if cachedO, found := b.cache.Get(oid); found {
		if o, valid := cachedO.(*object.Object); valid {
			return o, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObject reads the loose object matching the given oid off the
// filesystem. Loose objects are zlib-compressed and stored in their
// canonical form (type, size, NULL char, then content)
func (b *Backend) looseObject(oid ginternals.Oid) (o *object.Object, err error) {
	strOid := oid.String()
	p := b.looseObjectPath(strOid)
	f, err := b.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("object %s: %w", strOid, ginternals.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not open object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(f, &err)

	zlibReader, err := zlib.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(zlibReader, &err)

	// We directly read the entire file since most of it is the content
	// we need anyway
	buff, err := io.ReadAll(zlibReader)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s at path %s: %w", strOid, p, err)
	}

	o, err = object.NewFromCanonical(buff)
	if err != nil {
		return nil, xerrors.Errorf("object %s at path %s: %w", strOid, p, err)
	}
	return o, nil
}

// HasObject returns whether an object exists in the odb
func (b *Backend) HasObject(oid ginternals.Oid) (bool, error) {
	if _, found := b.cache.Get(oid); found {
		return true, nil
	}

	_, err := b.fs.Stat(b.looseObjectPath(oid.String()))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, xerrors.Errorf("could not check if object %s exists: %w", oid.String(), err)
}

// WriteObject adds an object to the odb.
// Writing an object that already exists is a no-op: the content of an
// object is fixed by its id
func (b *Backend) WriteObject(o *object.Object) (ginternals.Oid, error) {
	found, err := b.HasObject(o.ID())
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not check if object %s already exists: %w", o.ID().String(), err)
	}
	if found {
		return o.ID(), nil
	}

	data, err := o.Compress()
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not compress object: %w", err)
	}

	// Persist the data on disk
	sha := o.ID().String()
	p := b.looseObjectPath(sha)

	// We need to make sure the dest dir exists
	dest := filepath.Dir(p)
	if err = b.fs.MkdirAll(dest, 0o755); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not create the destination directory %s: %w", dest, err)
	}

	// We use 444 because git objects are read-only
	if err = afero.WriteFile(b.fs, p, data, 0o444); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist object %s at path %s: %w", sha, p, err)
	}

	b.cache.Add(o.ID(), o)
	return o.ID(), nil
}
