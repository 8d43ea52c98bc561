package ginternals

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/xerrors"
)

// Common ref names
const (
	// Head is a reference to the current branch, or to a commit if
	// we're detached
	Head = "HEAD"
	// Main corresponds to the default branch name if none was
	// specified
	Main = "main"
)

var (
	// ErrRefNotFound is an error thrown when trying to act on a
	// reference that doesn't exists
	ErrRefNotFound = errors.New("reference not found")

	// ErrRefNameInvalid is an error thrown when the name of a reference
	// is not valid
	ErrRefNameInvalid = errors.New("reference name is not valid")

	// ErrRefInvalid is an error thrown when a reference is not valid
	ErrRefInvalid = errors.New("reference is not valid")

	// ErrPackedRefInvalid is an error thrown when the packed-refs
	// file cannot be parsed properly
	ErrPackedRefInvalid = errors.New("packed-refs file is invalid")

	// ErrUnknownRefType is an error thrown when the type of a reference
	// is unknown
	ErrUnknownRefType = errors.New("unknown reference type")
)

// ReferenceType represents the type of a reference
type ReferenceType int8

const (
	// OidReference represents a reference that targets an Oid
	OidReference ReferenceType = 1
	// SymbolicReference represents a reference that targets another
	// reference
	SymbolicReference ReferenceType = 2
)

// Reference represents a git reference
// https://git-scm.com/book/en/v2/Git-Internals-Git-References
type Reference struct {
	name   string
	target string
	id     Oid
	typ    ReferenceType
}

// NewReference returns a new Reference object that targets an object
func NewReference(name string, target Oid) *Reference {
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   target,
	}
}

// NewSymbolicReference returns a new Reference object that targets
// another reference
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{
		typ:    SymbolicReference,
		name:   name,
		target: target,
	}
}

// Name returns the name of the reference
func (ref *Reference) Name() string {
	return ref.name
}

// Type returns the type of the reference
func (ref *Reference) Type() ReferenceType {
	return ref.typ
}

// Target returns the ID targeted by the reference.
// For a symbolic reference the ID is the one of the final
// (non-symbolic) reference of the chain
func (ref *Reference) Target() Oid {
	return ref.id
}

// SymbolicTarget returns the name of the reference targeted by this
// (symbolic) reference
func (ref *Reference) SymbolicTarget() string {
	return ref.target
}

// RefContent represents a method that returns the raw content of a
// reference. This is used so we can resolve chains of references here,
// without depending on a specific backend or having circular
// dependencies
type RefContent func(name string) ([]byte, error)

// ResolveReference resolves symbolic references
func ResolveReference(name string, finder RefContent) (*Reference, error) {
	return resolveRefs(name, finder, map[string]struct{}{})
}

// resolveRefs resolves references recursively
func resolveRefs(name string, finder RefContent, visited map[string]struct{}) (*Reference, error) {
	// we need to protect ourselves against circular references
	// Ex: refs/heads/main is a ref to refs/heads/a which is a ref to
	// refs/heads/main
	if _, ok := visited[name]; ok {
		return nil, xerrors.Errorf("circular symbolic reference: %w", ErrRefInvalid)
	}
	visited[name] = struct{}{}

	if !IsRefNameValid(name) {
		return nil, xerrors.Errorf(`ref "%s": %w`, name, ErrRefNameInvalid)
	}

	data, err := finder(name)
	if err != nil {
		return nil, err
	}
	data = bytes.Trim(data, " \n")

	// we're expecting at the very least 6 chars:
	// "ref: " followed by a ref
	if len(data) < 6 {
		return nil, ErrRefInvalid
	}

	// if the reference is symbolic, we need to follow it to get the
	// target
	if string(data[0:5]) == "ref: " {
		symbolicTarget := string(data[5:])
		ref, err := resolveRefs(symbolicTarget, finder, visited)
		if err != nil {
			return nil, err
		}
		return &Reference{
			typ:    SymbolicReference,
			name:   name,
			id:     ref.id,
			target: symbolicTarget,
		}, nil
	}

	oid, err := NewOidFromChars(data)
	if err != nil {
		return nil, ErrRefInvalid
	}
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   oid,
	}, nil
}

// IsRefNameValid returns whether the given name is a valid reference
// name. The check is not exhaustive, it only rejects the obviously
// illegal names
// https://git-scm.com/docs/git-check-ref-format
func IsRefNameValid(name string) bool {
	if name == "" {
		return false
	}
	if name[0] == '-' || name[0] == '.' || name[len(name)-1] == '.' {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	for _, c := range name {
		switch {
		case c < 0x20 || c == 0x7f:
			return false
		case c == ' ' || c == '~' || c == '^' || c == ':' || c == '?' || c == '*' || c == '[' || c == '\\':
			return false
		}
	}
	return !strings.HasSuffix(name, ".lock")
}
