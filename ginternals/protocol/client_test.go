package protocol_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pkt frames a payload as a pkt-line
func pkt(payload string) string {
	return fmt.Sprintf("%04x%s", len(payload)+4, payload)
}

func TestDiscoverRefs(t *testing.T) {
	t.Parallel()

	head := "ce013625030ba8dba906f756967f9e9ca394464a"

	t.Run("symref names the default branch", func(t *testing.T) {
		t.Parallel()

		body := pkt("# service=git-upload-pack\n") +
			"0000" +
			pkt(head+" HEAD\x00multi_ack symref=HEAD:refs/heads/trunk agent=git/2.40\n") +
			pkt(head+" refs/heads/trunk\n") +
			"0000"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/info/refs", r.URL.Path)
			assert.Equal(t, "git-upload-pack", r.URL.Query().Get("service"))
			fmt.Fprint(w, body)
		}))
		t.Cleanup(server.Close)

		disc, err := protocol.NewClient(server.URL).DiscoverRefs()
		require.NoError(t, err)
		assert.Equal(t, "trunk", disc.DefaultBranch)
		assert.Equal(t, head, disc.Head.String())
	})

	t.Run("falls back to an advertised master", func(t *testing.T) {
		t.Parallel()

		body := pkt("# service=git-upload-pack\n") +
			"0000" +
			pkt(head+" refs/heads/master\n") +
			"0000"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		t.Cleanup(server.Close)

		disc, err := protocol.NewClient(server.URL).DiscoverRefs()
		require.NoError(t, err)
		assert.Equal(t, "master", disc.DefaultBranch)
		assert.Equal(t, head, disc.Head.String())
	})

	t.Run("no usable ref should fail", func(t *testing.T) {
		t.Parallel()

		body := pkt("# service=git-upload-pack\n") +
			"0000" +
			pkt(head+" refs/heads/unrelated\n") +
			"0000"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		t.Cleanup(server.Close)

		_, err := protocol.NewClient(server.URL).DiscoverRefs()
		require.Error(t, err)
		assert.ErrorIs(t, err, protocol.ErrNoRef)
	})

	t.Run("http error should fail", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		_, err := protocol.NewClient(server.URL).DiscoverRefs()
		require.Error(t, err)
		assert.ErrorIs(t, err, protocol.ErrRequestFailed)
	})
}

func TestFetchPack(t *testing.T) {
	t.Parallel()

	want, err := ginternals.NewOidFromStr("ce013625030ba8dba906f756967f9e9ca394464a")
	require.NoError(t, err)

	t.Run("pack gets located after the leading pkt-lines", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/git-upload-pack", r.URL.Path)
			assert.Equal(t, "application/x-git-upload-pack-request", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "0032want "+want.String()+"\n00000009done\n", string(body))

			fmt.Fprint(w, pkt("NAK\n"))
			fmt.Fprint(w, "PACK\x00\x00\x00\x02\x00\x00\x00\x00")
		}))
		t.Cleanup(server.Close)

		pack, err := protocol.NewClient(server.URL).FetchPack(want)
		require.NoError(t, err)
		assert.Equal(t, []byte("PACK\x00\x00\x00\x02\x00\x00\x00\x00"), pack)
	})

	t.Run("response without a pack should fail", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, pkt("NAK\n"))
		}))
		t.Cleanup(server.Close)

		_, err := protocol.NewClient(server.URL).FetchPack(want)
		require.Error(t, err)
		assert.ErrorIs(t, err, protocol.ErrNoPack)
	})
}
