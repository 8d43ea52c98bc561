package git

import (
	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/ginternals/packfile"
	"github.com/gitcore/git-go/ginternals/protocol"
	"github.com/gitcore/git-go/internal/gitpath"
	"golang.org/x/xerrors"
)

// CloneSummary reports what a clone did
type CloneSummary struct {
	// DefaultBranch is the branch HEAD points to on the remote
	DefaultBranch string
	// Head is the id of the commit the working tree was rendered from
	Head ginternals.Oid
	// Objects is the number of objects written to the odb
	Objects uint32
	// SkippedDeltas is the number of pack records that could not be
	// reconstructed (ofs-deltas)
	SkippedDeltas uint32
}

// CloneRepository clones the repository at the given URL over
// smart-HTTP into the given path.
//
// The remote's refs are discovered first, then the repository is
// initialized with HEAD pointing at the (still unborn) default branch,
// the history of that branch is fetched as a pack, every object of the
// pack is persisted to the odb, the branch ref gets written, and the
// head commit's tree is rendered into the working directory.
// The branch ref is only written once the whole pack has been
// persisted, so an observer that sees it can assume the tree is
// fetchable
func CloneRepository(url, repoPath string) (*Repository, *CloneSummary, error) {
	return CloneRepositoryWithOptions(url, repoPath, InitOptions{})
}

// CloneRepositoryWithOptions clones the repository at the given URL
// over smart-HTTP into the given path
func CloneRepositoryWithOptions(url, repoPath string, opts InitOptions) (*Repository, *CloneSummary, error) {
	client := protocol.NewClient(url)
	disc, err := client.DiscoverRefs()
	if err != nil {
		return nil, nil, xerrors.Errorf("could not discover the refs of %s: %w", url, err)
	}

	opts.InitialBranchName = disc.DefaultBranch
	r, err := InitRepositoryWithOptions(repoPath, opts)
	if err != nil {
		return nil, nil, xerrors.Errorf("could not init %s: %w", repoPath, err)
	}

	pack, err := client.FetchPack(disc.Head)
	if err != nil {
		return nil, nil, xerrors.Errorf("could not fetch the pack: %w", err)
	}

	unpack, err := packfile.Unpack(r.dotGit, pack)
	if err != nil {
		return nil, nil, xerrors.Errorf("could not unpack: %w", err)
	}

	// all the objects are on disk, the branch can now be advertised
	ref := ginternals.NewReference(gitpath.LocalBranch(disc.DefaultBranch), disc.Head)
	if err = r.dotGit.WriteReference(ref); err != nil {
		return nil, nil, xerrors.Errorf("could not write %s: %w", ref.Name(), err)
	}

	headObj, err := r.dotGit.Object(disc.Head)
	if err != nil {
		return nil, nil, xerrors.Errorf("could not load the head commit %s: %w", disc.Head.String(), err)
	}
	head, err := headObj.AsCommit()
	if err != nil {
		return nil, nil, err
	}
	if err = r.CheckoutTree(head.TreeID(), r.repoRoot); err != nil {
		return nil, nil, xerrors.Errorf("could not render the working tree: %w", err)
	}

	return r, &CloneSummary{
		DefaultBranch: disc.DefaultBranch,
		Head:          disc.Head,
		Objects:       unpack.Objects,
		SkippedDeltas: unpack.SkippedDeltas,
	}, nil
}
