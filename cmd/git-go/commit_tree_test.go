package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gitcore/git-go/internal/env"
	"github.com/gitcore/git-go/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEnv pins the author identity so commit ids are reproducible
func fixedEnv() *env.Env {
	return env.NewFromKVList([]string{
		"GIT_AUTHOR_NAME=John Doe",
		"GIT_AUTHOR_EMAIL=john@domain.tld",
		"GIT_AUTHOR_DATE=1566115917",
	})
}

func TestCommitTreeCmd(t *testing.T) {
	t.Parallel()

	t.Run("commit with a parent has the documented payload", func(t *testing.T) {
		t.Parallel()

		dir := testhelper.TempDir(t)
		_, err := runCmd(t, fixedEnv(), "-C", dir, "init")
		require.NoError(t, err)
		testhelper.WriteFile(t, dir, "a", []byte("A\n"))

		out, err := runCmd(t, fixedEnv(), "-C", dir, "write-tree")
		require.NoError(t, err)
		treeID := strings.TrimSuffix(out, "\n")

		out, err = runCmd(t, fixedEnv(), "-C", dir, "commit-tree", treeID, "-m", "first")
		require.NoError(t, err)
		parentID := strings.TrimSuffix(out, "\n")
		require.Regexp(t, oidRegexp, parentID)

		out, err = runCmd(t, fixedEnv(), "-C", dir, "commit-tree", treeID, "-p", parentID, "-m", "msg")
		require.NoError(t, err)
		commitID := strings.TrimSuffix(out, "\n")

		payload, err := runCmd(t, fixedEnv(), "-C", dir, "cat-file", "-p", commitID)
		require.NoError(t, err)
		expected := fmt.Sprintf("tree %s\nparent %s\nauthor John Doe <john@domain.tld> 1566115917 +0000\ncommitter John Doe <john@domain.tld> 1566115917 +0000\n\nmsg\n",
			treeID, parentID)
		assert.Equal(t, expected, payload)
	})

	t.Run("identity is deterministic under a fixed environment", func(t *testing.T) {
		t.Parallel()

		ids := make([]string, 2)
		for i := range ids {
			dir := testhelper.TempDir(t)
			_, err := runCmd(t, fixedEnv(), "-C", dir, "init")
			require.NoError(t, err)
			testhelper.WriteFile(t, dir, "a", []byte("A\n"))

			out, err := runCmd(t, fixedEnv(), "-C", dir, "write-tree")
			require.NoError(t, err)
			treeID := strings.TrimSuffix(out, "\n")

			out, err = runCmd(t, fixedEnv(), "-C", dir, "commit-tree", treeID, "-m", "msg")
			require.NoError(t, err)
			ids[i] = out
		}
		assert.Equal(t, ids[0], ids[1])
	})

	t.Run("missing tree should fail", func(t *testing.T) {
		t.Parallel()

		dir := testhelper.TempDir(t)
		_, err := runCmd(t, fixedEnv(), "-C", dir, "init")
		require.NoError(t, err)

		_, err = runCmd(t, fixedEnv(), "-C", dir, "commit-tree", "4b825dc642cb6eb9a60e54bf8d69288fbee4904e", "-m", "msg")
		require.Error(t, err)
	})
}
