package relver

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// GenerateOptions controls changelog and authors file generation.
type GenerateOptions struct {
	SkipChangelog bool
	SkipAuthors   bool

	// AuthorIgnorePattern filters automation accounts out of the
	// AUTHORS file. Defaults to the well-known CI addresses.
	AuthorIgnorePattern string
}

const defaultAuthorIgnore = `(jenkins@review|infra@lists|jenkins@openstack)`

var coAuthorPattern = regexp.MustCompile(`(?m)^\s*Co-authored-by:.+$`)

// highestTag returns the highest of names by version ordering. Tags
// that do not parse as versions lose to ones that do and fall back to
// string comparison among themselves.
func highestTag(names []string) string {
	best := names[0]
	bestVersion, bestParses := parseTag(best)
	for _, name := range names[1:] {
		v, ok := parseTag(name)
		switch {
		case ok && bestParses:
			if c, err := Compare(v, bestVersion); err == nil && c > 0 {
				best, bestVersion = name, v
			}
		case ok:
			best, bestVersion, bestParses = name, v, true
		case !bestParses && name > best:
			best = name
		}
	}
	return best
}

// WriteChangelog renders the oneline history into a ChangeLog file in
// destDir, one section per release tag, newest first. Merge commits
// are skipped and trailing periods stripped from subjects. An existing
// read-only ChangeLog is left untouched.
func WriteChangelog(h History, destDir string, opts GenerateOptions) error {
	if opts.SkipChangelog || h == nil {
		return nil
	}
	entries, err := h.LogOneline()
	if err != nil {
		return fmt.Errorf("reading oneline log: %w", err)
	}

	path := filepath.Join(destDir, "ChangeLog")
	f, err := createUnlessReadOnly(path)
	if err != nil || f == nil {
		return err
	}
	defer f.Close()
	log.Debug().Str("path", path).Msg("writing ChangeLog")

	w := bufio.NewWriter(f)
	fmt.Fprint(w, "CHANGES\n=======\n\n")
	first := true
	for _, entry := range entries {
		if len(entry.Tags) > 0 {
			release := highestTag(entry.Tags)
			if !first {
				fmt.Fprint(w, "\n")
			}
			fmt.Fprintf(w, "%s\n%s\n\n", release, strings.Repeat("-", len(release)))
		}
		if !strings.HasPrefix(entry.Subject, "Merge ") {
			fmt.Fprintf(w, "* %s\n", strings.TrimSuffix(entry.Subject, "."))
		}
		first = false
	}
	return w.Flush()
}

// GenerateAuthors writes an AUTHORS file in destDir from the commit
// authors and Co-authored-by trailers. An AUTHORS.in file, when
// present, is prepended verbatim. An existing read-only AUTHORS is
// left untouched.
func GenerateAuthors(h History, destDir string, opts GenerateOptions) error {
	if opts.SkipAuthors || h == nil {
		return nil
	}

	pattern := opts.AuthorIgnorePattern
	if pattern == "" {
		pattern = defaultAuthorIgnore
	}
	ignore, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling author ignore pattern: %w", err)
	}

	lines, err := h.AuthorLines()
	if err != nil {
		return fmt.Errorf("reading authors: %w", err)
	}
	text, err := h.LogText("HEAD")
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}

	authors := lo.Filter(lines, func(author string, _ int) bool {
		return !ignore.MatchString(author)
	})
	for _, trailer := range coAuthorPattern.FindAllString(text, -1) {
		_, coAuthor, _ := strings.Cut(trailer, ":")
		authors = append(authors, strings.TrimSpace(coAuthor))
	}
	authors = lo.Uniq(authors)
	sort.Strings(authors)

	path := filepath.Join(destDir, "AUTHORS")
	f, err := createUnlessReadOnly(path)
	if err != nil || f == nil {
		return err
	}
	defer f.Close()
	log.Debug().Str("path", path).Msg("generating AUTHORS")

	if preamble, err := os.ReadFile(filepath.Join(destDir, "AUTHORS.in")); err == nil {
		if _, err := f.Write(preamble); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if _, err := f.WriteString(strings.Join(authors, "\n") + "\n"); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// createUnlessReadOnly creates path for writing. A permission error
// means an existing file should be kept as-is; that is signalled with
// a nil file and nil error.
func createUnlessReadOnly(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, nil
		}
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}
