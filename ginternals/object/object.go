// Package object contains methods and objects to work with git objects
package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/internal/errutil"
	"github.com/gitcore/git-go/internal/readutil"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/xerrors"
)

var (
	// ErrObjectUnknown represents an error thrown when encountering an
	// unknown object type
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrObjectInvalid represents an error thrown when an object contains
	// unexpected data or when the wrong object is provided to a method.
	// Ex. parsing a loose object with a corrupted header
	ErrObjectInvalid = errors.New("invalid object")

	// ErrTreeInvalid represents an error thrown when parsing an invalid
	// tree object
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid represents an error thrown when parsing an invalid
	// commit object
	ErrCommitInvalid = errors.New("invalid commit")
)

// Type represents the type of an object as stored in a packfile
type Type int8

// List of all the possible object types
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
	TypeTag    Type = 4
	// 5 is reserved for future use
	ObjectDeltaOFS Type = 6
	ObjectDeltaRef Type = 7
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	case ObjectDeltaOFS:
		return "ofs-delta"
	case ObjectDeltaRef:
		return "ref-delta"
	default:
		panic(fmt.Sprintf("unknown object type %d", t))
	}
}

// IsValid checks if the object type is an existing type
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit,
		TypeTree,
		TypeBlob,
		TypeTag,
		ObjectDeltaOFS,
		ObjectDeltaRef:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns a Type from its string representation
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, ErrObjectUnknown
	}
}

// Object represents a git object. An object can be of multiple types
// but they all share similarities (same storage system, same header,
// etc.).
// Objects are stored in .git/objects
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
type Object struct {
	id      ginternals.Oid
	typ     Type
	content []byte
}

// New creates a new git object of the given type.
// The ID is computed right away from the canonical form
func New(typ Type, content []byte) *Object {
	o := &Object{
		typ:     typ,
		content: content,
	}
	o.id = ginternals.NewOidFromContent(o.canonical())
	return o
}

// NewWithID creates a new git object of the given type with the given ID
func NewWithID(id ginternals.Oid, typ Type, content []byte) *Object {
	return &Object{
		id:      id,
		typ:     typ,
		content: content,
	}
}

// NewFromCanonical parses an object from its canonical form:
// [type] [size][NULL][content]
// The type in ascii, followed by a space, followed by the size in ascii,
// followed by a null character (0), followed by the object data
func NewFromCanonical(data []byte) (*Object, error) {
	// the type of the object starts at offset 0 and ends at the first
	// space character
	typ := readutil.ReadTo(data, ' ')
	if typ == nil {
		return nil, xerrors.Errorf("could not find object type: %w", ErrObjectInvalid)
	}
	oType, err := NewTypeFromString(string(typ))
	if err != nil {
		return nil, xerrors.Errorf("unsupported type %q: %w", string(typ), ErrObjectInvalid)
	}
	offset := len(typ) + 1 // +1 for the space

	// The size of the object starts after the space and ends at a NULL
	// char
	size := readutil.ReadTo(data[offset:], 0)
	if size == nil {
		return nil, xerrors.Errorf("could not find object size: %w", ErrObjectInvalid)
	}
	oSize, err := strconv.Atoi(string(size))
	if err != nil {
		return nil, xerrors.Errorf("invalid size %q: %w", size, ErrObjectInvalid)
	}
	offset += len(size) + 1 // +1 for the NULL char

	content := data[offset:]
	if len(content) != oSize {
		return nil, xerrors.Errorf("object marked as size %d, but has %d: %w", oSize, len(content), ErrObjectInvalid)
	}

	return New(oType, content), nil
}

// ID returns the ID of the object
func (o *Object) ID() ginternals.Oid {
	return o.id
}

// Size returns the size of the object
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the Type for this object
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's contents
func (o *Object) Bytes() []byte {
	return o.content
}

// canonical returns the object in its canonical form:
// [type] [size][NULL][content]
func (o *Object) canonical() []byte {
	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil
	w := new(bytes.Buffer)

	// Write the type
	w.WriteString(o.Type().String())
	// add the space
	w.WriteRune(' ')
	// write the size
	w.WriteString(strconv.Itoa(o.Size()))
	// Write the NULL char
	w.WriteByte(0)
	// Write the content
	w.Write(o.Bytes())

	return w.Bytes()
}

// Compress returns the object zlib compressed, which is the form the
// odb persists on disk
func (o *Object) Compress() (data []byte, err error) {
	compressedContent := new(bytes.Buffer)
	zw := zlib.NewWriter(compressedContent)

	if _, err = zw.Write(o.canonical()); err != nil {
		errutil.Close(zw, &err)
		return nil, xerrors.Errorf("could not zlib the object: %w", err)
	}
	// the footer of the stream is only written on Close(), so it has
	// to happen before we read the buffer
	if err = zw.Close(); err != nil {
		return nil, xerrors.Errorf("could not finish compressing the object: %w", err)
	}
	return compressedContent.Bytes(), nil
}

// AsBlob parses the object as Blob
func (o *Object) AsBlob() *Blob {
	return NewBlob(o)
}

// AsTree parses the object as Tree
func (o *Object) AsTree() (*Tree, error) {
	return NewTreeFromObject(o)
}

// AsCommit parses the object as Commit
func (o *Object) AsCommit() (*Commit, error) {
	return NewCommitFromObject(o)
}
