package relver

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse creates a Version from a version string.
//
// Parse is responsible for accepting any string this package (or its
// predecessors) ever emitted. Legacy spellings are normalised: 1.3.0a1
// parses and renders back as 1.3.0.0a1, and the old dot-delimited dev
// distance form 0.10.1.3.g83bef74 comes back as 0.10.1.dev3.g83bef74.
//
// Strings with no leading numeric component fail with an
// InvalidVersionError. That guards against bare git hashes such as
// 83bef74 masquerading as versions; they were never intended output
// and would wreck ordering downstream if accepted.
func Parse(versionString string) (Version, error) {
	input := strings.Split(versionString, ".")
	for _, c := range input {
		if c == "" {
			return Version{}, &InvalidVersionError{Input: versionString,
				Reason: "empty component"}
		}
	}
	var components []string
	for _, c := range input {
		if !isDigits(c) {
			break
		}
		components = append(components, c)
	}
	digitLen := len(components)
	if digitLen == 0 {
		return Version{}, &InvalidVersionError{Input: versionString,
			Reason: "no numeric components"}
	}
	if digitLen < 3 {
		if digitLen < len(input) && input[digitLen] != "" && isDigit(input[digitLen][0]) {
			// X.YaZ - the digits are a patch level, not a lead-in to
			// the prerelease. Split them out and keep the rest.
			mixed := input[digitLen]
			split := 0
			for split < len(mixed) && isDigit(mixed[split]) {
				split++
			}
			components = append(components, mixed[:split])
			tail := append([]string{mixed[:split], mixed[split:]}, input[digitLen+1:]...)
			input = append(input[:digitLen:digitLen], tail...)
			digitLen++
		}
		for len(components) < 3 {
			components = append(components, "0")
		}
	}
	components = append(components, input[digitLen:]...)

	major, err := strconv.Atoi(components[0])
	if err != nil {
		return Version{}, &InvalidVersionError{Input: versionString, Reason: err.Error()}
	}
	minor, err := strconv.Atoi(components[1])
	if err != nil {
		return Version{}, &InvalidVersionError{Input: versionString, Reason: err.Error()}
	}
	patch, err := strconv.Atoi(components[2])
	if err != nil {
		return Version{}, &InvalidVersionError{Input: versionString, Reason: err.Error()}
	}

	var (
		pre *PreRelease
		dev *DevMark
	)
	remainder := components[3:]

	legacyDev := 0
	if len(remainder) > 0 && isDigits(remainder[0]) {
		legacyDev, _ = strconv.Atoi(remainder[0])
	}
	if legacyDev != 0 {
		// Old dev distance format, e.g. 0.1.2.3.g1234.
		dev = &DevMark{Count: legacyDev}
	} else {
		if len(remainder) > 0 && strings.ContainsRune("0abr", rune(remainder[0][0])) {
			p, err := parsePreComponent(remainder[0])
			if err != nil {
				return Version{}, &InvalidVersionError{Input: versionString, Reason: err.Error()}
			}
			pre = &p
			remainder = remainder[1:]
		}
		if len(remainder) > 0 {
			component := remainder[0]
			switch {
			case strings.HasPrefix(component, "dev"):
				count, err := strconv.Atoi(component[len("dev"):])
				if err != nil {
					return Version{}, &InvalidVersionError{Input: versionString, Reason: err.Error()}
				}
				dev = &DevMark{Count: count}
			case strings.HasPrefix(component, "g"):
				// A hash with no explicit distance still means at
				// least one commit past the tag.
				dev = &DevMark{Count: 1, Hash: component[1:]}
			default:
				return Version{}, &InvalidVersionError{Input: versionString,
					Reason: fmt.Sprintf("unknown remainder %q", component)}
			}
		}
	}
	if len(remainder) > 1 && dev != nil {
		dev.Hash = remainder[1][1:]
	}

	return NewVersion(major, minor, patch, pre, dev)
}

// parsePreComponent splits a token like 0a1, b4 or rc2 into a
// prerelease marker: discard leading digits, take the letter run as
// the type and the tail as the serial.
func parsePreComponent(segment string) (PreRelease, error) {
	i := 0
	for i < len(segment) && isDigit(segment[i]) {
		i++
	}
	segment = segment[i:]
	j := 0
	for j < len(segment) && isAlpha(segment[j]) {
		j++
	}
	preType := PreType(segment[:j])
	switch preType {
	case PreAlpha, PreBeta, PreRC:
	default:
		return PreRelease{}, fmt.Errorf("unknown prerelease type %q", preType)
	}
	serial, err := strconv.Atoi(segment[j:])
	if err != nil {
		return PreRelease{}, fmt.Errorf("prerelease serial: %w", err)
	}
	return PreRelease{Type: preType, Serial: serial}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
