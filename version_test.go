package relver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustVersion(t *testing.T, major, minor, patch int, pre *PreRelease, dev *DevMark) Version {
	t.Helper()
	v, err := NewVersion(major, minor, patch, pre, dev)
	require.NoError(t, err)
	return v
}

func TestNewVersion(t *testing.T) {
	t.Run("Plain release", func(t *testing.T) {
		v := New(1, 2, 3)
		require.Equal(t, 1, v.Major())
		require.Equal(t, 2, v.Minor())
		require.Equal(t, 3, v.Patch())
		_, isPre := v.PreRelease()
		require.False(t, isPre)
		_, isDev := v.Dev()
		require.False(t, isDev)
	})

	t.Run("Prerelease and dev are mutually exclusive", func(t *testing.T) {
		_, err := NewVersion(1, 2, 3,
			&PreRelease{Type: PreAlpha, Serial: 1},
			&DevMark{Count: 4, Hash: "abcd123"})
		require.ErrorIs(t, err, ErrConstruction)
	})

	t.Run("Equality is structural and versions are hashable", func(t *testing.T) {
		a := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreBeta, Serial: 2}, nil)
		b := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreBeta, Serial: 2}, nil)
		require.True(t, a == b)

		seen := map[Version]int{a: 1}
		seen[b]++
		require.Equal(t, 2, seen[a])
		require.Len(t, seen, 1)
	})
}

func TestCompare(t *testing.T) {
	alpha1 := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreAlpha, Serial: 1}, nil)
	alpha2 := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreAlpha, Serial: 2}, nil)
	beta1 := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreBeta, Serial: 1}, nil)
	rc1 := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreRC, Serial: 1}, nil)
	dev3 := New(1, 2, 3).ToDev(3, "abcd123")
	dev4 := New(1, 2, 3).ToDev(4, "bcde234")
	release := New(1, 2, 3)

	t.Run("Release triple decides first", func(t *testing.T) {
		for _, pair := range [][2]Version{
			{New(1, 2, 3), New(1, 2, 4)},
			{New(1, 2, 9), New(1, 3, 0)},
			{New(1, 9, 9), New(2, 0, 0)},
			// A higher triple beats any marker on the lower one.
			{rc1, New(1, 2, 4)},
			{dev4, New(1, 2, 4)},
		} {
			c, err := Compare(pair[0], pair[1])
			require.NoError(t, err)
			require.Equal(t, -1, c)

			c, err = Compare(pair[1], pair[0])
			require.NoError(t, err)
			require.Equal(t, 1, c)
		}
	})

	t.Run("Prerelease ranks alpha then beta then rc", func(t *testing.T) {
		for _, pair := range [][2]Version{
			{alpha1, alpha2},
			{alpha2, beta1},
			{beta1, rc1},
			{rc1, release},
		} {
			c, err := Compare(pair[0], pair[1])
			require.NoError(t, err)
			require.Equal(t, -1, c)

			c, err = Compare(pair[1], pair[0])
			require.NoError(t, err)
			require.Equal(t, 1, c)
		}
	})

	t.Run("Dev builds sort below the release by dev count", func(t *testing.T) {
		c, err := Compare(dev3, dev4)
		require.NoError(t, err)
		require.Equal(t, -1, c)

		c, err = Compare(dev4, release)
		require.NoError(t, err)
		require.Equal(t, -1, c)

		c, err = Compare(dev3, dev3)
		require.NoError(t, err)
		require.Equal(t, 0, c)
	})

	t.Run("Prerelease versus dev build is undefined", func(t *testing.T) {
		var undefErr *UndefinedOrderError

		_, err := Compare(alpha1, dev3)
		require.ErrorAs(t, err, &undefErr)

		_, err = Compare(dev3, alpha1)
		require.ErrorAs(t, err, &undefErr)
	})

	t.Run("Equal dev count with different hashes is undefined", func(t *testing.T) {
		a := New(1, 2, 3).ToDev(3, "abcd123")
		b := New(1, 2, 3).ToDev(3, "ffff999")

		var undefErr *UndefinedOrderError
		_, err := Compare(a, b)
		require.ErrorAs(t, err, &undefErr)

		// Same hash means the same build.
		c, err := Compare(a, New(1, 2, 3).ToDev(3, "abcd123"))
		require.NoError(t, err)
		require.Equal(t, 0, c)
	})

	t.Run("Asymmetric and transitive on the defined region", func(t *testing.T) {
		ordered := []Version{New(1, 0, 0), alpha1, beta1, rc1, release, New(1, 2, 4)}
		for i, low := range ordered {
			for _, high := range ordered[i+1:] {
				c, err := Compare(low, high)
				require.NoError(t, err)
				require.Equal(t, -1, c, "%s < %s", low, high)

				c, err = Compare(high, low)
				require.NoError(t, err)
				require.Equal(t, 1, c, "%s > %s", high, low)
			}
		}
	})

	t.Run("A dev count of zero orders like the plain release", func(t *testing.T) {
		devZero := New(1, 2, 3).ToDev(0, "abcd123")
		c, err := Compare(devZero, release)
		require.NoError(t, err)
		require.Equal(t, 0, c)
		// Still structurally distinct.
		require.False(t, devZero == release)
	})
}

func TestIncrement(t *testing.T) {
	t.Run("Default is a patch bump", func(t *testing.T) {
		require.Equal(t, New(1, 2, 4), New(1, 2, 3).Increment(false, false))
	})

	t.Run("Prerelease bumps the serial and keeps the triple", func(t *testing.T) {
		v := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreBeta, Serial: 0}, nil)
		next := v.Increment(false, false)
		require.Equal(t, mustVersion(t, 1, 2, 3, &PreRelease{Type: PreBeta, Serial: 1}, nil), next)
	})

	t.Run("Minor bump zeroes patch and clears prerelease", func(t *testing.T) {
		v := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreRC, Serial: 2}, nil)
		require.Equal(t, New(1, 3, 0), v.Increment(true, false))
	})

	t.Run("Major bump zeroes minor and patch and clears markers", func(t *testing.T) {
		v := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreAlpha, Serial: 1}, nil)
		require.Equal(t, New(2, 0, 0), v.Increment(false, true))
		// Major wins over minor when both are requested.
		require.Equal(t, New(2, 0, 0), New(1, 2, 3).Increment(true, true))
	})

	t.Run("Dev markers are never carried", func(t *testing.T) {
		v := New(1, 2, 3).ToDev(5, "abcd123")
		next := v.Increment(false, false)
		require.Equal(t, New(1, 2, 4), next)
		_, isDev := next.Dev()
		require.False(t, isDev)
	})
}

func TestDecrement(t *testing.T) {
	require.Equal(t, New(1, 2, 2), New(1, 2, 3).Decrement())
	require.Equal(t, New(1, 1, 9999), New(1, 2, 0).Decrement())
	require.Equal(t, New(0, 9999, 9999), New(1, 0, 0).Decrement())
	// Major floors at zero.
	require.Equal(t, New(0, 9999, 9999), New(0, 0, 0).Decrement())

	t.Run("Result sorts below the marker version it renders", func(t *testing.T) {
		pre := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreAlpha, Serial: 1}, nil)
		c, err := Compare(pre.Decrement(), pre)
		require.NoError(t, err)
		require.Equal(t, -1, c)

		dev := New(1, 2, 0).ToDev(3, "abcd123")
		c, err = Compare(dev.Decrement(), dev)
		require.NoError(t, err)
		require.Equal(t, -1, c)
	})
}

func TestRendering(t *testing.T) {
	alpha := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreAlpha, Serial: 1}, nil)
	rc := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreRC, Serial: 2}, nil)
	dev := New(1, 2, 1).ToDev(3, "abcd123")

	t.Run("Release strings", func(t *testing.T) {
		require.Equal(t, "1.2.3", New(1, 2, 3).ReleaseString())
		require.Equal(t, "1.2.3.0a1", alpha.ReleaseString())
		require.Equal(t, "1.2.3.0rc2", rc.ReleaseString())
		require.Equal(t, "1.2.1.dev3.gabcd123", dev.ReleaseString())
	})

	t.Run("Debian strings", func(t *testing.T) {
		require.Equal(t, "1.2.3", New(1, 2, 3).DebianString())
		require.Equal(t, "1.2.3~a1", alpha.DebianString())
		require.Equal(t, "1.2.3~rc2", rc.DebianString())
		require.Equal(t, "1.2.1~dev3+gabcd123", dev.DebianString())
	})

	t.Run("RPM strings decrement in place of a sort-before operator", func(t *testing.T) {
		require.Equal(t, "1.2.3", New(1, 2, 3).RPMString())
		require.Equal(t, "1.2.2.a1", alpha.RPMString())
		require.Equal(t, "1.2.2.rc2", rc.RPMString())
		require.Equal(t, "1.2.0.dev3+gabcd123", dev.RPMString())
	})

	t.Run("Brief strings drop all markers", func(t *testing.T) {
		require.Equal(t, "1.2.3", alpha.BriefString())
		require.Equal(t, "1.2.1", dev.BriefString())
	})

	t.Run("Dev without hash", func(t *testing.T) {
		require.Equal(t, "1.2.1.dev3", New(1, 2, 1).ToDev(3, "").ReleaseString())
	})

	t.Run("Dev count of zero renders as the plain release", func(t *testing.T) {
		require.Equal(t, "1.2.3", New(1, 2, 3).ToDev(0, "abcd123").ReleaseString())
	})
}

func TestToRelease(t *testing.T) {
	pre := mustVersion(t, 2, 1, 0, &PreRelease{Type: PreRC, Serial: 1}, nil)
	require.Equal(t, New(2, 1, 0), pre.ToRelease())
	require.Equal(t, New(2, 1, 0), New(2, 1, 0).ToDev(7, "abcd123").ToRelease())
}

func TestVersionTuple(t *testing.T) {
	require.Equal(t,
		VersionTuple{Major: 1, Minor: 2, Patch: 3, Kind: KindFinal},
		New(1, 2, 3).VersionTuple())

	alpha := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreAlpha, Serial: 2}, nil)
	require.Equal(t,
		VersionTuple{Major: 1, Minor: 2, Patch: 3, Kind: KindAlpha, Serial: 2},
		alpha.VersionTuple())

	rc := mustVersion(t, 1, 2, 3, &PreRelease{Type: PreRC, Serial: 1}, nil)
	require.Equal(t, KindCandidate, rc.VersionTuple().Kind)

	dev := New(1, 2, 3).ToDev(3, "abcd123")
	require.Equal(t,
		VersionTuple{Major: 1, Minor: 2, Patch: 3, Kind: KindDev, Serial: 2},
		dev.VersionTuple())
}
