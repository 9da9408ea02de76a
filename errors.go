package relver

import (
	"errors"
	"fmt"
)

// ErrConstruction is returned when a version is built with both a
// prerelease marker and a dev marker. The version scheme does not
// permit a build to be both at once.
var ErrConstruction = errors.New("prerelease and dev markers are mutually exclusive")

// ErrNoVersionInfo is returned when no version source is available at
// all: no explicit override, no packaged metadata and no usable git
// repository.
var ErrNoVersionInfo = errors.New(
	"versioning requires an explicit override, packaged metadata, or access to a git repository")

// InvalidVersionError reports a string that does not decompose into
// any version this package has ever produced.
type InvalidVersionError struct {
	Input  string
	Reason string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// UndefinedOrderError reports a comparison the version ordering leaves
// deliberately undefined: a prerelease against a dev build at the same
// release triple, or two dev builds with equal count but different
// hashes. Callers must not assume a default ordering for these.
type UndefinedOrderError struct {
	A, B   Version
	Reason string
}

func (e *UndefinedOrderError) Error() string {
	return fmt.Sprintf("ordering %s against %s is undefined: %s",
		e.A.ReleaseString(), e.B.ReleaseString(), e.Reason)
}

// VersionConflictError reports an explicit target version lower than
// the version git history demands.
type VersionConflictError struct {
	Required Version
	Target   Version
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("git history requires a target version of %s, but target version is %s",
		e.Required.ReleaseString(), e.Target.ReleaseString())
}
