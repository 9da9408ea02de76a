package relver

import (
	"bufio"
	"fmt"
	"net/textproto"
	"os"
	"path/filepath"
)

// metadataFileNames are checked in order: PKG-INFO inside source
// archives, METADATA inside built distributions.
var metadataFileNames = []string{"PKG-INFO", "METADATA"}

// versionFromMetadata reads the Version header from packaged metadata
// in dir, provided the Name header matches packageName. Returns the
// empty string when no usable metadata is present.
func versionFromMetadata(dir, packageName string) string {
	for _, name := range metadataFileNames {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		header, err := textproto.NewReader(bufio.NewReader(f)).ReadMIMEHeader()
		f.Close()
		// Header-only files end without a blank line; the headers read
		// so far are still good.
		if err != nil && len(header) == 0 {
			continue
		}
		if header.Get("Name") != packageName {
			continue
		}
		if version := header.Get("Version"); version != "" {
			return version
		}
	}
	return ""
}

// PackageVersionOptions configures PackageVersion. Override carries
// any process-environment version override; it is passed in explicitly
// rather than read deep inside resolution, so the algorithm stays
// testable with fixed inputs.
type PackageVersionOptions struct {
	// Name is the package whose version is wanted. Metadata with a
	// different Name header is ignored.
	Name string

	// Dir is where metadata files are looked up. Defaults to ".".
	Dir string

	// PreVersion, when set, is the version being prepared for release;
	// it becomes the target version for git inference.
	PreVersion string

	// Override short-circuits all lookups when non-empty.
	Override string

	// History supplies repository data. Leave nil when no repository
	// is available; resolution then degrades to the other sources.
	History History
}

// PackageVersion resolves the version of a package: explicit override
// first, then packaged metadata, then git history. When every source
// comes up empty an error wrapping ErrNoVersionInfo is returned.
func PackageVersion(opts PackageVersionOptions) (string, error) {
	if opts.Override != "" {
		return opts.Override, nil
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if version := versionFromMetadata(dir, opts.Name); version != "" {
		return version, nil
	}
	version, err := VersionFromGit(opts.History, opts.PreVersion)
	if err != nil {
		return "", err
	}
	if version != "" {
		return version, nil
	}
	return "", fmt.Errorf("resolving version for %q: %w", opts.Name, ErrNoVersionInfo)
}

// VersionInfo resolves the version of a package once and caches it.
type VersionInfo struct {
	opts    PackageVersionOptions
	version *Version
}

// NewVersionInfo returns a VersionInfo for the given package options.
// Resolution is deferred until first use.
func NewVersionInfo(opts PackageVersionOptions) *VersionInfo {
	return &VersionInfo{opts: opts}
}

// SemanticVersion resolves and returns the package version.
func (vi *VersionInfo) SemanticVersion() (Version, error) {
	if vi.version == nil {
		s, err := PackageVersion(vi.opts)
		if err != nil {
			return Version{}, err
		}
		v, err := Parse(s)
		if err != nil {
			return Version{}, err
		}
		vi.version = &v
	}
	return *vi.version, nil
}

// ReleaseString returns the full version including any VCS suffix.
func (vi *VersionInfo) ReleaseString() (string, error) {
	v, err := vi.SemanticVersion()
	if err != nil {
		return "", err
	}
	return v.ReleaseString(), nil
}

// VersionString returns the short version without prerelease or dev
// suffixes.
func (vi *VersionInfo) VersionString() (string, error) {
	v, err := vi.SemanticVersion()
	if err != nil {
		return "", err
	}
	return v.BriefString(), nil
}
