package ginternals_test

import (
	"testing"

	"github.com/gitcore/git-go/ginternals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOidFromStr(t *testing.T) {
	t.Parallel()

	t.Run("valid oid", func(t *testing.T) {
		t.Parallel()

		oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
		require.NoError(t, err)
		assert.Equal(t, "9b91da06e69613397b38e0808e0ba5ee6983251b", oid.String())
		assert.False(t, oid.IsZero())
	})

	t.Run("invalid chars should fail", func(t *testing.T) {
		t.Parallel()

		_, err := ginternals.NewOidFromStr("zz91da06e69613397b38e0808e0ba5ee6983251b")
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrInvalidOid)
	})

	t.Run("wrong length should fail", func(t *testing.T) {
		t.Parallel()

		_, err := ginternals.NewOidFromStr("9b91da06")
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrInvalidOid)
	})
}

func TestNewOidFromContent(t *testing.T) {
	t.Parallel()

	t.Run("id of the empty blob", func(t *testing.T) {
		t.Parallel()

		// canonical form of a blob with no content
		oid := ginternals.NewOidFromContent([]byte("blob 0\x00"))
		assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", oid.String())
	})

	t.Run("is stable across encodings", func(t *testing.T) {
		t.Parallel()

		content := []byte("blob 6\x00hello\n")
		assert.Equal(t, ginternals.NewOidFromContent(content), ginternals.NewOidFromContent(content))
	})
}

func TestNewOidFromHex(t *testing.T) {
	t.Parallel()

	t.Run("raw bytes round-trip", func(t *testing.T) {
		t.Parallel()

		oid, err := ginternals.NewOidFromStr("ce013625030ba8dba906f756967f9e9ca394464a")
		require.NoError(t, err)

		back, err := ginternals.NewOidFromHex(oid.Bytes())
		require.NoError(t, err)
		assert.Equal(t, oid, back)
	})

	t.Run("short input should fail", func(t *testing.T) {
		t.Parallel()

		_, err := ginternals.NewOidFromHex([]byte{0xce, 0x01})
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrInvalidOid)
	})
}

func TestNullOid(t *testing.T) {
	t.Parallel()

	assert.True(t, ginternals.NullOid.IsZero())
	assert.Equal(t, "0000000000000000000000000000000000000000", ginternals.NullOid.String())
}
