package object

import "github.com/gitcore/git-go/ginternals"

// Blob represents a blob object
type Blob struct {
	rawObject *Object
}

// NewBlob returns a new blob from an object
func NewBlob(o *Object) *Blob {
	return &Blob{rawObject: o}
}

// ID returns the object's ID
func (b *Blob) ID() ginternals.Oid {
	return b.rawObject.ID()
}

// Size returns the blob's size
func (b *Blob) Size() int {
	return b.rawObject.Size()
}

// Bytes returns the blob's contents
func (b *Blob) Bytes() []byte {
	return b.rawObject.Bytes()
}

// ToObject returns the underlying Object
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
