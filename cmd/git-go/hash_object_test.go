package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitcore/git-go/internal/env"
	"github.com/gitcore/git-go/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashObjectCmd(t *testing.T) {
	t.Parallel()

	t.Run("-w stores the blob and prints its id", func(t *testing.T) {
		t.Parallel()

		dir := testhelper.TempDir(t)
		_, err := runCmd(t, env.NewFromKVList(nil), "-C", dir, "init")
		require.NoError(t, err)

		p := testhelper.WriteFile(t, dir, "x.txt", []byte("hello\n"))

		out, err := runCmd(t, env.NewFromKVList(nil), "-C", dir, "hash-object", "-w", p)
		require.NoError(t, err)
		assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a\n", out)

		// the object landed in its sharded path, zlib-compressed
		objPath := filepath.Join(dir, ".git", "objects", "ce", "013625030ba8dba906f756967f9e9ca394464a")
		data, err := os.ReadFile(objPath)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
		// zlib magic
		assert.Equal(t, byte(0x78), data[0])
	})

	t.Run("without -w nothing gets stored", func(t *testing.T) {
		t.Parallel()

		dir := testhelper.TempDir(t)
		_, err := runCmd(t, env.NewFromKVList(nil), "-C", dir, "init")
		require.NoError(t, err)

		p := testhelper.WriteFile(t, dir, "x.txt", []byte("hello\n"))

		out, err := runCmd(t, env.NewFromKVList(nil), "-C", dir, "hash-object", p)
		require.NoError(t, err)
		assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a\n", out)

		_, err = os.Stat(filepath.Join(dir, ".git", "objects", "ce"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestCatFileCmd(t *testing.T) {
	t.Parallel()

	t.Run("-p prints the blob payload verbatim", func(t *testing.T) {
		t.Parallel()

		dir := testhelper.TempDir(t)
		_, err := runCmd(t, env.NewFromKVList(nil), "-C", dir, "init")
		require.NoError(t, err)

		p := testhelper.WriteFile(t, dir, "x.txt", []byte("hello\n"))
		_, err = runCmd(t, env.NewFromKVList(nil), "-C", dir, "hash-object", "-w", p)
		require.NoError(t, err)

		out, err := runCmd(t, env.NewFromKVList(nil), "-C", dir, "cat-file", "-p", "ce013625030ba8dba906f756967f9e9ca394464a")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", out)
	})

	t.Run("missing object should fail", func(t *testing.T) {
		t.Parallel()

		dir := testhelper.TempDir(t)
		_, err := runCmd(t, env.NewFromKVList(nil), "-C", dir, "init")
		require.NoError(t, err)

		_, err = runCmd(t, env.NewFromKVList(nil), "-C", dir, "cat-file", "-p", "ce013625030ba8dba906f756967f9e9ca394464a")
		require.Error(t, err)
	})
}
