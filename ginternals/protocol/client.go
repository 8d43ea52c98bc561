package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/internal/errutil"
	"golang.org/x/xerrors"
)

const (
	uploadPackService = "git-upload-pack"

	uploadPackReqContentType = "application/x-git-upload-pack-request"
	uploadPackResContentType = "application/x-git-upload-pack-result"

	// capability advertised on the first ref line, binding HEAD to the
	// remote's default branch
	symrefHeadPrefix = "symref=HEAD:"
)

var (
	// ErrRequestFailed is an error thrown when the remote answers with
	// a non-success status
	ErrRequestFailed = errors.New("request failed")
	// ErrNoRef is an error thrown when the ref advertisement doesn't
	// contain a usable head ref
	ErrNoRef = errors.New("no usable ref advertised")
	// ErrNoPack is an error thrown when the fetch response doesn't
	// contain a pack stream
	ErrNoPack = errors.New("no pack in response")
)

// RefDiscovery is the result of the ref advertisement request
type RefDiscovery struct {
	// DefaultBranch is the branch HEAD points to on the remote
	DefaultBranch string
	// Head is the id of the commit at the tip of the default branch
	Head ginternals.Oid
}

// Client speaks the smart-HTTP protocol against a single remote
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the repository at the given URL
func NewClient(url string) *Client {
	return &Client{
		base: strings.TrimSuffix(url, "/"),
		http: &http.Client{},
	}
}

// DiscoverRefs asks the remote for its refs and returns the default
// branch alongside the id of its tip.
//
// The response is a list of pkt-lines. The first substantive line
// advertises the capabilities of the remote after a NUL byte; among
// them may be "symref=HEAD:refs/heads/<name>", which names the default
// branch (we fall back to "main", then accept an advertised "master").
// Every other line has the form "<40-hex> <refname>\n".
func (c *Client) DiscoverRefs() (disc *RefDiscovery, err error) {
	url := fmt.Sprintf("%s/info/refs?service=%s", c.base, uploadPackService)
	res, err := c.http.Get(url)
	if err != nil {
		return nil, xerrors.Errorf("could not fetch %s: %w", url, err)
	}
	defer errutil.Close(res.Body, &err)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, xerrors.Errorf("remote answered with a %d: %w", res.StatusCode, ErrRequestFailed)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, xerrors.Errorf("could not read the advertisement: %w", err)
	}

	disc = &RefDiscovery{}
	var lines [][]byte
	for len(body) > 0 {
		advance, payload, err := readPktLine(body)
		if err != nil {
			return nil, xerrors.Errorf("could not parse the advertisement: %w", err)
		}
		body = body[advance:]
		if len(payload) > 0 {
			lines = append(lines, payload)
		}
	}

	// the default branch hides in the capabilities, advertised behind
	// a NUL byte on the first ref line
	for _, line := range lines {
		nul := bytes.IndexByte(line, 0)
		if nul == -1 {
			continue
		}
		for _, capability := range strings.Fields(string(line[nul+1:])) {
			if target, ok := strings.CutPrefix(capability, symrefHeadPrefix); ok {
				disc.DefaultBranch = strings.TrimPrefix(target, "refs/heads/")
			}
		}
	}
	if disc.DefaultBranch == "" {
		disc.DefaultBranch = ginternals.Main
	}

	wanted := []string{
		"refs/heads/" + disc.DefaultBranch,
		"refs/heads/master",
		"refs/heads/main",
	}
	for _, want := range wanted {
		oid, ok := findRef(lines, want)
		if !ok {
			continue
		}
		disc.Head = oid
		if disc.DefaultBranch == "" || !strings.HasSuffix(want, "/"+disc.DefaultBranch) {
			disc.DefaultBranch = strings.TrimPrefix(want, "refs/heads/")
		}
		return disc, nil
	}
	return nil, xerrors.Errorf("no ref line for %q: %w", wanted[0], ErrNoRef)
}

// findRef scans the advertised lines for the one naming the wanted
// ref, and returns the 40-hex id the line starts with
func findRef(lines [][]byte, name string) (ginternals.Oid, bool) {
	for _, line := range lines {
		// the service announcement ("# service=...") and the
		// capabilities segment are not ref lines
		trimmed := bytes.TrimSuffix(line, []byte{'\n'})
		if nul := bytes.IndexByte(trimmed, 0); nul != -1 {
			trimmed = trimmed[:nul]
		}
		if !bytes.HasSuffix(trimmed, []byte(" "+name)) {
			continue
		}
		if len(trimmed) < ginternals.OidSize*2 {
			continue
		}
		oid, err := ginternals.NewOidFromChars(trimmed[:ginternals.OidSize*2])
		if err != nil {
			continue
		}
		return oid, true
	}
	return ginternals.NullOid, false
}

// FetchPack asks the remote for the history of want and returns the
// raw pack stream, positioned at the "PACK" magic.
//
// The request body is three pkt-lines: the want, a flush, and "done".
// No capabilities are negotiated, the remote answers with a default
// pack. The response may carry pkt-lines (NAK, progress) before the
// pack itself, so we scan for the magic.
func (c *Client) FetchPack(want ginternals.Oid) (pack []byte, err error) {
	body := fmt.Sprintf("0032want %s\n00000009done\n", want.String())
	url := fmt.Sprintf("%s/%s", c.base, uploadPackService)

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, xerrors.Errorf("could not build the fetch request: %w", err)
	}
	req.Header.Set("Content-Type", uploadPackReqContentType)
	req.Header.Set("Accept", uploadPackResContentType)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("could not fetch %s: %w", url, err)
	}
	defer errutil.Close(res.Body, &err)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, xerrors.Errorf("remote answered with a %d: %w", res.StatusCode, ErrRequestFailed)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, xerrors.Errorf("could not read the pack response: %w", err)
	}

	start := bytes.Index(data, []byte("PACK"))
	if start == -1 {
		return nil, xerrors.Errorf("response of %d bytes: %w", len(data), ErrNoPack)
	}
	return data[start:], nil
}
