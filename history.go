package relver

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/blang/semver"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// LogEntry is one oneline-style log record: the abbreviated commit
// hash, any tags pointing at the commit, and the subject line.
type LogEntry struct {
	Hash    string
	Tags    []string
	Subject string
}

// History is the repository collaborator consumed by version
// resolution and changelog generation. Implementations need not be
// safe for concurrent use.
type History interface {
	// LastCommitShortHash returns the abbreviated hash of HEAD.
	LastCommitShortHash() (string, error)

	// LogOneline returns log entries from HEAD, newest first.
	LogOneline() ([]LogEntry, error)

	// LogText returns the full log text for a range spec such as
	// "1.2.0..HEAD" or "HEAD", in git-log layout: commit headers
	// followed by the message body indented four spaces.
	LogText(rangeSpec string) (string, error)

	// ExactTag returns the tag checked out exactly at HEAD, or an
	// error when HEAD is not tagged.
	ExactTag() (string, error)

	// AuthorLines returns one "Name <email>" line per commit from
	// HEAD, newest first.
	AuthorLines() ([]string, error)

	// TrackedFiles returns the paths tracked at HEAD.
	TrackedFiles() ([]string, error)
}

// GitHistory reads repository history through go-git.
type GitHistory struct {
	repo *git.Repository
}

// OpenRepository opens the git repository containing path, searching
// parent directories for the .git directory.
func OpenRepository(path string) (*GitHistory, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &GitHistory{repo: repo}, nil
}

// NewGitHistory wraps an already-open repository.
func NewGitHistory(repo *git.Repository) *GitHistory {
	return &GitHistory{repo: repo}
}

const shortHashLen = 7

func (g *GitHistory) head() (*object.Commit, error) {
	ref, err := g.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	commit, err := g.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit object: %w", err)
	}
	return commit, nil
}

// tagsByCommit maps each commit hash to the tag names pointing at it,
// resolving annotated tags to their targets.
func (g *GitHistory) tagsByCommit() (map[plumbing.Hash][]string, error) {
	tags, err := g.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	byCommit := make(map[plumbing.Hash][]string)
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		target := ref.Hash()
		obj, err := g.repo.TagObject(ref.Hash())
		switch err {
		case nil:
			target = obj.Target
		case plumbing.ErrObjectNotFound:
			// Lightweight tag.
		default:
			return err
		}
		byCommit[target] = append(byCommit[target], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, names := range byCommit {
		sort.Strings(names)
	}
	return byCommit, nil
}

// resolveRevision turns a revision name into a commit hash. Version
// resolution hands back canonical release strings for tags, so a tag
// is also tried with a leading v before falling back to go-git's own
// revision resolution.
func (g *GitHistory) resolveRevision(rev string) (plumbing.Hash, error) {
	for _, name := range []string{rev, "v" + rev} {
		ref, err := g.repo.Tag(name)
		if err != nil {
			continue
		}
		if obj, err := g.repo.TagObject(ref.Hash()); err == nil {
			return obj.Target, nil
		}
		return ref.Hash(), nil
	}
	hash, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving revision %q: %w", rev, err)
	}
	return *hash, nil
}

// LastCommitShortHash returns the abbreviated hash of HEAD.
func (g *GitHistory) LastCommitShortHash() (string, error) {
	commit, err := g.head()
	if err != nil {
		return "", err
	}
	return commit.Hash.String()[:shortHashLen], nil
}

// LogOneline returns log entries from HEAD, newest first.
func (g *GitHistory) LogOneline() ([]LogEntry, error) {
	commit, err := g.head()
	if err != nil {
		return nil, err
	}
	tags, err := g.tagsByCommit()
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	iter := object.NewCommitPreorderIter(commit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		subject, _, _ := strings.Cut(c.Message, "\n")
		entries = append(entries, LogEntry{
			Hash:    c.Hash.String()[:shortHashLen],
			Tags:    tags[c.Hash],
			Subject: strings.TrimSpace(subject),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log: %w", err)
	}
	return entries, nil
}

// LogText returns the full log text for a range spec in git-log
// layout. The left side of a ".." range is exclusive.
func (g *GitHistory) LogText(rangeSpec string) (string, error) {
	start := rangeSpec
	stop := plumbing.ZeroHash
	if from, to, ok := strings.Cut(rangeSpec, ".."); ok {
		start = to
		hash, err := g.resolveRevision(from)
		if err != nil {
			return "", err
		}
		stop = hash
	}
	startHash, err := g.resolveRevision(start)
	if err != nil {
		return "", err
	}
	commit, err := g.repo.CommitObject(startHash)
	if err != nil {
		return "", fmt.Errorf("getting commit object: %w", err)
	}

	var b strings.Builder
	iter := object.NewCommitPreorderIter(commit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == stop {
			return storer.ErrStop
		}
		fmt.Fprintf(&b, "commit %s\nAuthor: %s <%s>\n\n",
			c.Hash, c.Author.Name, c.Author.Email)
		for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking log: %w", err)
	}
	return b.String(), nil
}

// ExactTag returns the tag checked out exactly at HEAD. When several
// tags share the commit the highest by version ordering wins.
func (g *GitHistory) ExactTag() (string, error) {
	commit, err := g.head()
	if err != nil {
		return "", err
	}
	tags, err := g.tagsByCommit()
	if err != nil {
		return "", err
	}
	names := tags[commit.Hash]
	if len(names) == 0 {
		return "", fmt.Errorf("no tag at %s", commit.Hash.String()[:shortHashLen])
	}
	return highestTag(names), nil
}

// AuthorLines returns one "Name <email>" line per commit.
func (g *GitHistory) AuthorLines() ([]string, error) {
	commit, err := g.head()
	if err != nil {
		return nil, err
	}
	var lines []string
	iter := object.NewCommitPreorderIter(commit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		lines = append(lines, fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log: %w", err)
	}
	return lines, nil
}

// TrackedFiles returns the paths tracked at HEAD.
func (g *GitHistory) TrackedFiles() ([]string, error) {
	commit, err := g.head()
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}
	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking tree: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// parseTag parses a tag name as a version. Module-style directory
// prefixes (sdk/v2.1.0) are stripped. Tags in the native dotted form
// parse directly; semver-style tags such as v1.2.3-rc.1 are converted.
// The second return is false for tags that are not versions at all.
func parseTag(tag string) (Version, bool) {
	_, tag = path.Split(tag)
	if v, err := Parse(tag); err == nil {
		return v, true
	}
	sv, err := semver.Parse(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return Version{}, false
	}
	return fromSemver(sv)
}

func fromSemver(sv semver.Version) (Version, bool) {
	if len(sv.Pre) == 0 {
		return New(int(sv.Major), int(sv.Minor), int(sv.Patch)), true
	}
	var preType PreType
	switch sv.Pre[0].VersionStr {
	case "a", "alpha":
		preType = PreAlpha
	case "b", "beta":
		preType = PreBeta
	case "rc":
		preType = PreRC
	default:
		return Version{}, false
	}
	serial := 0
	if len(sv.Pre) > 1 && sv.Pre[1].IsNum {
		serial = int(sv.Pre[1].VersionNum)
	}
	v, err := NewVersion(int(sv.Major), int(sv.Minor), int(sv.Patch),
		&PreRelease{Type: preType, Serial: serial}, nil)
	if err != nil {
		return Version{}, false
	}
	return v, true
}
