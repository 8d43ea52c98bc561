// Package backend contains interfaces and implementations to store and
// retrieve data from the odb
package backend

import (
	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
)

// Backend represents an object that can store and retrieve data
// from and to the odb
type Backend interface {
	// Init initializes a repository
	Init() error

	// Reference returns a stored reference from its name
	// ginternals.ErrRefNotFound is returned if the reference doesn't
	// exist
	Reference(name string) (*ginternals.Reference, error)
	// WriteReference writes the given reference in the db. If the
	// reference already exists it will be overwritten
	WriteReference(ref *ginternals.Reference) error

	// Object returns the object that has the given oid
	Object(ginternals.Oid) (*object.Object, error)
	// HasObject returns whether an object exists in the odb
	HasObject(ginternals.Oid) (bool, error)
	// WriteObject adds an object to the odb
	WriteObject(*object.Object) (ginternals.Oid, error)
}
