package relver

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Increment captures the version impact extracted from commit message
// directives. The zero value is the default patch-level increment.
type Increment struct {
	Major bool
	Minor bool
}

const semVerMarker = "sem-ver:"

// incrementDirectives scans the commit messages between tag and HEAD
// for sem-ver pseudo headers and folds the recognised symbols into
// increment flags. Symbols compose by severity: any api-break forces a
// major bump regardless of what else is present. Unknown symbols are
// logged and dropped; they are the one kind of bad input resolution
// absorbs instead of raising.
func incrementDirectives(h History, tag string) (Increment, error) {
	rangeSpec := "HEAD"
	if tag != "" {
		rangeSpec = tag + "..HEAD"
	}
	text, err := h.LogText(rangeSpec)
	if err != nil {
		return Increment{}, fmt.Errorf("reading log for %s: %w", rangeSpec, err)
	}

	symbols := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < len(semVerMarker) ||
			!strings.EqualFold(trimmed[:len(semVerMarker)], semVerMarker) {
			continue
		}
		for _, symbol := range strings.Split(trimmed[len(semVerMarker):], ",") {
			if symbol = strings.TrimSpace(symbol); symbol != "" {
				symbols[symbol] = struct{}{}
			}
		}
	}

	take := func(symbol string) bool {
		_, ok := symbols[symbol]
		delete(symbols, symbol)
		return ok
	}
	var inc Increment
	take("bugfix") // the default minimum increment, no flag needed
	if take("feature") {
		inc.Minor = true
	}
	if take("deprecation") {
		inc.Minor = true
	}
	if take("api-break") {
		inc.Major = true
	}
	for symbol := range symbols {
		log.Warn().Str("symbol", symbol).Msg("unknown sem-ver symbol")
	}
	return inc, nil
}

// lastTagAndDistance returns the canonical release string of the most
// recent version tag reachable from HEAD, and the number of commits
// since it. The newest commit carrying at least one version-parseable
// tag wins; when several of its tags parse the highest by version
// ordering is used. Tags that do not parse as versions are silently
// ignored - not every tag is a version. With no version tag anywhere
// the distance is the full commit count.
func lastTagAndDistance(h History) (string, int, error) {
	entries, err := h.LogOneline()
	if err != nil {
		return "", 0, err
	}
	for distance, entry := range entries {
		var versions []Version
		for _, tag := range entry.Tags {
			if v, ok := parseTag(tag); ok {
				versions = append(versions, v)
			}
		}
		if len(versions) == 0 {
			continue
		}
		highest := versions[0]
		for _, v := range versions[1:] {
			c, err := Compare(v, highest)
			if err != nil {
				return "", 0, err
			}
			if c > 0 {
				highest = v
			}
		}
		return highest.ReleaseString(), distance, nil
	}
	return "", len(entries), nil
}

// CalculateTargetVersion computes the version the repository state
// demands. With HEAD exactly at the last version tag (distance zero)
// the tagged version is returned verbatim, bypassing the target check.
// Otherwise the last tagged version is incremented according to
// commit-message directives and a dev marker for the distance is
// appended. target, when non-nil, is used as the result base instead,
// but only if it is not lower than the incremented version - a lower
// target fails with a VersionConflictError.
func CalculateTargetVersion(h History, target *Version) (Version, error) {
	tag, distance, err := lastTagAndDistance(h)
	if err != nil {
		return Version{}, err
	}
	tagged := tag
	if tagged == "" {
		tagged = "0"
	}
	last, err := Parse(tagged)
	if err != nil {
		return Version{}, err
	}

	if distance == 0 {
		return last, nil
	}

	inc, err := incrementDirectives(h, tag)
	if err != nil {
		return Version{}, err
	}
	next := last.Increment(inc.Minor, inc.Major)

	if target != nil {
		c, err := Compare(next, *target)
		if err != nil {
			return Version{}, err
		}
		if c > 0 {
			return Version{}, &VersionConflictError{Required: next, Target: *target}
		}
	}

	hash, err := h.LastCommitShortHash()
	if err != nil {
		return Version{}, err
	}
	if target != nil {
		return target.ToDev(distance, hash), nil
	}
	return next.ToDev(distance, hash), nil
}

// VersionFromGit derives the build version string from repository
// history. If HEAD is checked out exactly at a version tag, that tag
// is the target version. Otherwise preVersion, when set, is used as
// the target; with neither, the version is inferred purely from the
// last tag and commit-message directives.
//
// A nil history yields an empty string rather than an error, so
// callers without a repository can fall back to other version sources.
func VersionFromGit(h History, preVersion string) (string, error) {
	if h == nil {
		return "", nil
	}

	var target *Version
	if tag, err := h.ExactTag(); err == nil {
		// Tags may spell prereleases with a dash (1.0.0-rc1).
		if v, err := Parse(strings.ReplaceAll(tag, "-", ".")); err == nil {
			target = &v
		}
	}
	if target == nil && preVersion != "" {
		v, err := Parse(preVersion)
		if err != nil {
			return "", err
		}
		target = &v
	}

	result, err := CalculateTargetVersion(h, target)
	if err != nil {
		return "", err
	}
	return result.ReleaseString(), nil
}
