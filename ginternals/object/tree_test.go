package object_test

import (
	"testing"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oidFromStr(t *testing.T, s string) ginternals.Oid {
	t.Helper()
	oid, err := ginternals.NewOidFromStr(s)
	require.NoError(t, err)
	return oid
}

func TestNewTree(t *testing.T) {
	t.Parallel()

	blobID := oidFromStr(t, "ce013625030ba8dba906f756967f9e9ca394464a")
	treeID := oidFromStr(t, "4b825dc642cb6eb9a60e54bf8d69288fbee4904e")

	t.Run("entries get sorted by name", func(t *testing.T) {
		t.Parallel()

		tree := object.NewTree([]object.TreeEntry{
			{Path: "b", Mode: object.ModeFile, ID: blobID},
			{Path: "a", Mode: object.ModeFile, ID: blobID},
		})
		entries := tree.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].Path)
		assert.Equal(t, "b", entries[1].Path)
	})

	t.Run("directories sort with a virtual trailing slash", func(t *testing.T) {
		t.Parallel()

		// "foo-" < "foo/" even though "foo-" > "foo": the directory
		// must come last
		tree := object.NewTree([]object.TreeEntry{
			{Path: "foo", Mode: object.ModeDirectory, ID: treeID},
			{Path: "foo-", Mode: object.ModeFile, ID: blobID},
		})
		entries := tree.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "foo-", entries[0].Path)
		assert.Equal(t, "foo", entries[1].Path)
	})

	t.Run("same entries always give the same id", func(t *testing.T) {
		t.Parallel()

		a := object.NewTree([]object.TreeEntry{
			{Path: "b", Mode: object.ModeFile, ID: blobID},
			{Path: "a", Mode: object.ModeFile, ID: blobID},
		})
		b := object.NewTree([]object.TreeEntry{
			{Path: "a", Mode: object.ModeFile, ID: blobID},
			{Path: "b", Mode: object.ModeFile, ID: blobID},
		})
		assert.Equal(t, a.ID(), b.ID())
	})

	t.Run("empty tree", func(t *testing.T) {
		t.Parallel()

		tree := object.NewTree(nil)
		assert.Empty(t, tree.Entries())
		assert.Equal(t, "4b825dc642cb6eb9a60e54bf8d69288fbee4904e", tree.ID().String())
	})
}

func TestTreeSerialization(t *testing.T) {
	t.Parallel()

	blobID := oidFromStr(t, "ce013625030ba8dba906f756967f9e9ca394464a")
	subTreeID := oidFromStr(t, "4b825dc642cb6eb9a60e54bf8d69288fbee4904e")

	t.Run("payload follows the on-disk format", func(t *testing.T) {
		t.Parallel()

		tree := object.NewTree([]object.TreeEntry{
			{Path: "x.txt", Mode: object.ModeFile, ID: blobID},
		})
		o := tree.ToObject()

		expected := append([]byte("100644 x.txt\x00"), blobID.Bytes()...)
		assert.Equal(t, expected, o.Bytes())
	})

	t.Run("directory modes have no leading zero", func(t *testing.T) {
		t.Parallel()

		tree := object.NewTree([]object.TreeEntry{
			{Path: "sub", Mode: object.ModeDirectory, ID: subTreeID},
		})
		o := tree.ToObject()
		assert.Equal(t, append([]byte("40000 sub\x00"), subTreeID.Bytes()...), o.Bytes())
	})

	t.Run("parse inverts serialize", func(t *testing.T) {
		t.Parallel()

		tree := object.NewTree([]object.TreeEntry{
			{Path: "exe", Mode: object.ModeExecutable, ID: blobID},
			{Path: "sub", Mode: object.ModeDirectory, ID: subTreeID},
			{Path: "x.txt", Mode: object.ModeFile, ID: blobID},
		})

		back, err := object.NewTreeFromObject(object.New(object.TypeTree, tree.ToObject().Bytes()))
		require.NoError(t, err)
		assert.Equal(t, tree.Entries(), back.Entries())
		assert.Equal(t, tree.ID(), back.ID())
	})

	t.Run("empty payload is a valid tree", func(t *testing.T) {
		t.Parallel()

		tree, err := object.NewTreeFromObject(object.New(object.TypeTree, nil))
		require.NoError(t, err)
		assert.Empty(t, tree.Entries())
	})

	t.Run("truncated id should fail", func(t *testing.T) {
		t.Parallel()

		_, err := object.NewTreeFromObject(object.New(object.TypeTree, []byte("100644 x.txt\x00not-20-bytes")))
		require.Error(t, err)
		assert.ErrorIs(t, err, object.ErrTreeInvalid)
	})

	t.Run("missing path should fail", func(t *testing.T) {
		t.Parallel()

		_, err := object.NewTreeFromObject(object.New(object.TypeTree, []byte("100644 ")))
		require.Error(t, err)
		assert.ErrorIs(t, err, object.ErrTreeInvalid)
	})
}
