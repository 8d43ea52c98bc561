package object

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/internal/readutil"
	"golang.org/x/xerrors"
)

// TreeObjectMode represents the mode of an object inside a tree
// Non-standard modes (like 0o100664) are not supported
type TreeObjectMode int32

const (
	// ModeFile represents the mode to use for a regular file
	ModeFile TreeObjectMode = 0o100644
	// ModeExecutable represents the mode to use for an executable file
	ModeExecutable TreeObjectMode = 0o100755
	// ModeDirectory represents the mode to use for a directory
	ModeDirectory TreeObjectMode = 0o040000
	// ModeSymLink represents the mode to use for a symbolic link
	ModeSymLink TreeObjectMode = 0o120000
	// ModeGitLink represents the mode to use for a gitlink (submodule)
	ModeGitLink TreeObjectMode = 0o160000
)

// IsValid returns whether the mode is a supported mode or not
func (m TreeObjectMode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory, ModeSymLink, ModeGitLink:
		return true
	default:
		return false
	}
}

// ObjectType returns the object type associated to a mode
func (m TreeObjectMode) ObjectType() Type {
	switch m {
	case ModeDirectory:
		return TypeTree
	case ModeGitLink:
		return TypeCommit
	case ModeExecutable, ModeFile, ModeSymLink:
		return TypeBlob
	default:
		// We treat anything unexpected as blob
		return TypeBlob
	}
}

// Tree represents a git tree object
type Tree struct {
	rawObject *Object
	// we don't use pointers to make sure entries are immutable
	entries []TreeEntry
}

// TreeEntry represents an entry inside a git tree
type TreeEntry struct {
	Path string
	ID   ginternals.Oid
	Mode TreeObjectMode
}

// sortKey returns the byte sequence the entry sorts under.
// Directories sort as if their name had a trailing "/", which is how
// git tie-breaks "foo" against "foo/"
func (e TreeEntry) sortKey() string {
	if e.Mode == ModeDirectory {
		return e.Path + "/"
	}
	return e.Path
}

// SortEntries sorts tree entries in the canonical git order.
// Two identical working trees must serialize to the same tree id, so
// the order cannot depend on how the entries got collected
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].sortKey() < entries[j].sortKey()
	})
}

// NewTree returns a new tree with the given entries.
// The entries are sorted in the canonical order as a side effect
func NewTree(entries []TreeEntry) *Tree {
	SortEntries(entries)
	t := &Tree{
		entries: entries,
	}
	t.rawObject = t.ToObject()
	return t
}

// NewTreeFromObject returns a new tree from an object
//
// A tree has following format:
//
// {octal_mode} {path_name}\0{encoded_sha}
//
// Note:
// - a Tree may have zero or more entries, an empty payload is a
//   valid (empty) tree
func NewTreeFromObject(o *Object) (*Tree, error) {
	if o.Type() != TypeTree {
		return nil, xerrors.Errorf("type %s is not a tree: %w", o.typ, ErrObjectInvalid)
	}

	entries := []TreeEntry{}

	objData := o.Bytes()
	if len(objData) > 0 {
		offset := 0
		// the variable i is only used for error messages, not for
		// actual processing
		for i := 1; ; i++ {
			entry := TreeEntry{}
			data := readutil.ReadTo(objData[offset:], ' ')
			if len(data) == 0 {
				return nil, xerrors.Errorf("could not retrieve the mode of entry %d: %w", i, ErrTreeInvalid)
			}
			offset += len(data) + 1 // +1 for the space
			mode, err := strconv.ParseInt(string(data), 8, 32)
			if err != nil {
				return nil, xerrors.Errorf("could not parse mode of entry %d: %s: %w", i, err.Error(), ErrTreeInvalid)
			}
			entry.Mode = TreeObjectMode(mode)

			data = readutil.ReadTo(objData[offset:], 0)
			if len(data) == 0 {
				return nil, xerrors.Errorf("could not retrieve the path of entry %d: %w", i, ErrTreeInvalid)
			}
			offset += len(data) + 1 // +1 for the \0
			entry.Path = string(data)

			if offset+ginternals.OidSize > len(objData) {
				return nil, xerrors.Errorf("not enough space to retrieve the ID of entry %d: %w", i, ErrTreeInvalid)
			}
			entry.ID, err = ginternals.NewOidFromHex(objData[offset : offset+ginternals.OidSize])
			if err != nil {
				// should never fail since any value is valid as long as
				// it is 20 bytes
				return nil, xerrors.Errorf("invalid SHA for entry %d (%s): %w", i, err.Error(), ErrTreeInvalid)
			}
			offset += ginternals.OidSize

			entries = append(entries, entry)
			if len(objData) == offset {
				break
			}
		}
	}
	return &Tree{
		rawObject: o,
		entries:   entries,
	}, nil
}

// Entries returns a copy of tree entries
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the object's ID
func (t *Tree) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// ToObject returns the underlying Object
func (t *Tree) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}

	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil
	buf := new(bytes.Buffer)

	// The format of a tree entry is:
	// {octal_mode} {path_name}\0{encoded_sha}
	// A tree object is only composed of a bunch of entries back to back
	for _, e := range t.entries {
		// Write the mode
		buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
		// add space
		buf.WriteByte(' ')
		// add the path
		buf.WriteString(e.Path)
		// Write the NULL char
		buf.WriteByte(0)
		// Finish with the raw oid
		buf.Write(e.ID.Bytes())
	}

	return New(TypeTree, buf.Bytes())
}
