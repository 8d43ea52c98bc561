package fsbackend_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitcore/git-go/backend/fsbackend"
	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/gitcore/git-go/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInitializedBackend(t *testing.T) *fsbackend.Backend {
	t.Helper()

	b := fsbackend.New(testhelper.TempDir(t))
	require.NoError(t, b.Init())
	return b
}

func TestWriteObject(t *testing.T) {
	t.Parallel()

	t.Run("stores the object under its sharded path", func(t *testing.T) {
		t.Parallel()

		b := newInitializedBackend(t)
		o := object.New(object.TypeBlob, []byte("hello\n"))

		oid, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", oid.String())

		p := filepath.Join(b.Root(), "objects", "ce", "013625030ba8dba906f756967f9e9ca394464a")
		_, err = os.Stat(p)
		require.NoError(t, err)
	})

	t.Run("writing twice is a no-op", func(t *testing.T) {
		t.Parallel()

		b := newInitializedBackend(t)
		o := object.New(object.TypeBlob, []byte("hello\n"))

		oid, err := b.WriteObject(o)
		require.NoError(t, err)
		oid2, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.Equal(t, oid, oid2)
	})
}

func TestObject(t *testing.T) {
	t.Parallel()

	t.Run("round-trips what WriteObject stored", func(t *testing.T) {
		t.Parallel()

		b := newInitializedBackend(t)
		o := object.New(object.TypeBlob, []byte("hello\n"))
		_, err := b.WriteObject(o)
		require.NoError(t, err)

		// a fresh backend makes sure we hit the disk, not the cache
		back, err := fsbackend.New(b.Root()).Object(o.ID())
		require.NoError(t, err)
		assert.Equal(t, object.TypeBlob, back.Type())
		assert.Equal(t, []byte("hello\n"), back.Bytes())
		assert.Equal(t, o.ID(), back.ID())
	})

	t.Run("missing object should fail with ErrObjectNotFound", func(t *testing.T) {
		t.Parallel()

		b := newInitializedBackend(t)
		oid, err := ginternals.NewOidFromStr("ce013625030ba8dba906f756967f9e9ca394464a")
		require.NoError(t, err)

		_, err = b.Object(oid)
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrObjectNotFound)
	})
}

func TestHasObject(t *testing.T) {
	t.Parallel()

	b := newInitializedBackend(t)
	o := object.New(object.TypeBlob, []byte("hello\n"))

	found, err := b.HasObject(o.ID())
	require.NoError(t, err)
	assert.False(t, found)

	_, err = b.WriteObject(o)
	require.NoError(t, err)

	found, err = b.HasObject(o.ID())
	require.NoError(t, err)
	assert.True(t, found)
}
