// Package relver derives package versions from git history and renders
// them in the serialisation dialects used by downstream packaging
// tools (release strings, Debian, RPM).
//
// The version scheme is a semantic version extended with either a
// prerelease marker (alpha/beta/release candidate) or a dev marker
// (commits since the last tagged release plus a short commit hash),
// never both at once.
package relver

import (
	"fmt"
	"strings"
)

// PreType identifies the kind of prerelease a version carries. The
// string values sort in precedence order: a < b < rc.
type PreType string

const (
	PreNone  PreType = ""
	PreAlpha PreType = "a"
	PreBeta  PreType = "b"
	PreRC    PreType = "rc"
)

// PreRelease marks a version as an alpha/beta/release-candidate build.
type PreRelease struct {
	Type   PreType
	Serial int
}

// DevMark marks a version as a development build Count commits past
// the last tagged release, at commit Hash.
type DevMark struct {
	Count int
	Hash  string
}

// Version is an immutable semantic version independent of
// serialisation. The zero value is the release 0.0.0. Version is
// comparable, so structurally equal versions are == and usable as map
// keys.
type Version struct {
	major, minor, patch int
	preType             PreType
	pre                 int
	hasDev              bool
	dev                 int
	hash                string
}

// New returns a plain release version.
func New(major, minor, patch int) Version {
	return Version{major: major, minor: minor, patch: patch}
}

// NewVersion builds a version with an optional prerelease or dev
// marker. Supplying both fails with ErrConstruction: the scheme does
// not permit a prerelease and a dev marker on the same version.
func NewVersion(major, minor, patch int, pre *PreRelease, dev *DevMark) (Version, error) {
	if pre != nil && dev != nil {
		return Version{}, fmt.Errorf("%w: %s%d and dev%d", ErrConstruction,
			pre.Type, pre.Serial, dev.Count)
	}
	v := New(major, minor, patch)
	if pre != nil {
		v.preType = pre.Type
		v.pre = pre.Serial
	}
	if dev != nil {
		v.hasDev = true
		v.dev = dev.Count
		v.hash = dev.Hash
	}
	return v, nil
}

// Major returns the major component.
func (v Version) Major() int { return v.major }

// Minor returns the minor component.
func (v Version) Minor() int { return v.minor }

// Patch returns the patch component.
func (v Version) Patch() int { return v.patch }

// PreRelease returns the prerelease marker, if any.
func (v Version) PreRelease() (PreRelease, bool) {
	if v.preType == PreNone {
		return PreRelease{}, false
	}
	return PreRelease{Type: v.preType, Serial: v.pre}, true
}

// Dev returns the dev marker, if any.
func (v Version) Dev() (DevMark, bool) {
	if !v.hasDev {
		return DevMark{}, false
	}
	return DevMark{Count: v.dev, Hash: v.hash}, true
}

// A dev count of zero never comes out of version resolution (zero
// distance skips the dev suffix entirely), so ordering and rendering
// treat it as absent. Equality still distinguishes it.
func (v Version) isDev() bool { return v.hasDev && v.dev != 0 }

func (v Version) isPre() bool { return v.preType != PreNone }

// Compare orders a against b three-way: -1 when a sorts before b, 0
// when they order equal, 1 when a sorts after b. The release triple
// decides first; at an equal triple a prerelease sorts before the
// final release and a dev build sorts before the release it heads
// toward. Two regions are deliberately undefined and return an
// UndefinedOrderError: a prerelease against a dev build, and two dev
// builds with equal count but different hashes.
func Compare(a, b Version) (int, error) {
	if c := compareTriple(a, b); c != 0 {
		return c, nil
	}
	switch {
	case a.isPre():
		switch {
		case b.isPre():
			if a.preType != b.preType {
				return compareOrdered(string(a.preType), string(b.preType)), nil
			}
			return compareOrdered(a.pre, b.pre), nil
		case b.isDev():
			return 0, &UndefinedOrderError{A: a, B: b,
				Reason: "prerelease versus dev build"}
		default:
			return -1, nil
		}
	case a.isDev():
		switch {
		case b.isDev():
			if a.dev != b.dev {
				return compareOrdered(a.dev, b.dev), nil
			}
			if a.hash == b.hash {
				return 0, nil
			}
			return 0, &UndefinedOrderError{A: a, B: b,
				Reason: "same dev count with different hashes"}
		case b.isPre():
			return 0, &UndefinedOrderError{A: a, B: b,
				Reason: "dev build versus prerelease"}
		default:
			return -1, nil
		}
	default:
		if b.isPre() || b.isDev() {
			return 1, nil
		}
		return 0, nil
	}
}

// Compare orders v against other. See the package-level Compare.
func (v Version) Compare(other Version) (int, error) {
	return Compare(v, other)
}

func compareTriple(a, b Version) int {
	if c := compareOrdered(a.major, b.major); c != 0 {
		return c
	}
	if c := compareOrdered(a.minor, b.minor); c != 0 {
		return c
	}
	return compareOrdered(a.patch, b.patch)
}

func compareOrdered[T int | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Increment returns the next version. The default is a patch bump,
// except for prereleases, where the prerelease serial is bumped and
// the release triple kept. minor and major bumps zero the components
// below them and clear any prerelease marker. Dev markers are never
// carried into the result.
func (v Version) Increment(minor, major bool) Version {
	next := Version{major: v.major, minor: v.minor}
	if v.isPre() {
		next.preType = v.preType
		next.pre = v.pre + 1
		next.patch = v.patch
	} else {
		next.patch = v.patch + 1
	}
	if minor {
		next.minor = v.minor + 1
		next.patch = 0
		next.preType, next.pre = PreNone, 0
	}
	if major {
		next.major = v.major + 1
		next.minor, next.patch = 0, 0
		next.preType, next.pre = PreNone, 0
	}
	return next
}

// Decrement returns the version immediately prior in sort order.
// Decrementing only exists to render prerelease and dev versions into
// serialisations with no sort-before operator (RPM); the 9999
// component is the borrow value for that scheme. It is not an inverse
// of Increment.
func (v Version) Decrement() Version {
	switch {
	case v.patch > 0:
		return New(v.major, v.minor, v.patch-1)
	case v.minor > 0:
		return New(v.major, v.minor-1, 9999)
	case v.major > 0:
		return New(v.major-1, 9999, 9999)
	default:
		return New(0, 9999, 9999)
	}
}

// ToDev returns a development build of this version: count commits
// since the last release, at the commit identified by hash. Any
// prerelease marker is discarded.
func (v Version) ToDev(count int, hash string) Version {
	return Version{major: v.major, minor: v.minor, patch: v.patch,
		hasDev: true, dev: count, hash: hash}
}

// ToRelease discards any prerelease or dev marker.
func (v Version) ToRelease() Version {
	return New(v.major, v.minor, v.patch)
}

// BriefString renders just the release triple.
func (v Version) BriefString() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// longVersion renders the version with the given separators. An empty
// preSep means the target format has no sort-before operator; the base
// is the decremented release triple and "." is used as separator so
// the result still sorts before the release it derives from.
func (v Version) longVersion(preSep, hashSep, rcMarker string) string {
	var b strings.Builder
	if preSep == "" && (v.isPre() || v.isDev()) {
		b.WriteString(v.Decrement().BriefString())
		preSep = "."
	} else {
		b.WriteString(v.BriefString())
	}
	if v.isPre() {
		fmt.Fprintf(&b, "%s%s%s%d", preSep, rcMarker, v.preType, v.pre)
	}
	if v.isDev() {
		fmt.Fprintf(&b, "%sdev%d", preSep, v.dev)
		if v.hash != "" {
			b.WriteString(hashSep)
			b.WriteString(v.hash)
		}
	}
	return b.String()
}

// ReleaseString renders the full native version, including any
// prerelease or VCS suffix, e.g. 1.2.0.0a1 or 1.2.1.dev3.gabcd123.
func (v Version) ReleaseString() string {
	return v.longVersion(".", ".g", "0")
}

// DebianString renders the version for a Debian package, mapping the
// scheme's precedence rules onto dpkg's ~ sort-before operator.
func (v Version) DebianString() string {
	return v.longVersion("~", "+g", "")
}

// RPMString renders the version for an RPM package. RPM has no
// sort-before operator, so prerelease and dev builds are shown as
// builds of the decremented release.
func (v Version) RPMString() string {
	return v.longVersion("", "+g", "")
}

// String renders the release string.
func (v Version) String() string { return v.ReleaseString() }

// VersionKind classifies a version for VersionTuple.
type VersionKind string

const (
	KindAlpha     VersionKind = "alpha"
	KindBeta      VersionKind = "beta"
	KindCandidate VersionKind = "candidate"
	KindDev       VersionKind = "dev"
	KindFinal     VersionKind = "final"
)

// VersionTuple is a version-info style presentation of a Version.
type VersionTuple struct {
	Major, Minor, Patch int
	Kind                VersionKind
	Serial              int
}

// VersionTuple presents the version as a version-info tuple. The
// prerelease marker takes precedence for the kind; with no prerelease
// the dev marker is used and its serial is the dev count minus one;
// final versions never get serials.
func (v Version) VersionTuple() VersionTuple {
	t := VersionTuple{Major: v.major, Minor: v.minor, Patch: v.patch}
	switch {
	case v.isPre():
		kinds := map[PreType]VersionKind{
			PreAlpha: KindAlpha,
			PreBeta:  KindBeta,
			PreRC:    KindCandidate,
		}
		t.Kind = kinds[v.preType]
		t.Serial = v.pre
	case v.isDev():
		t.Kind = KindDev
		t.Serial = v.dev - 1
	default:
		t.Kind = KindFinal
	}
	return t
}
