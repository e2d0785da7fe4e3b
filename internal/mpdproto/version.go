package mpdproto

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a totally-ordered (major, minor, patch) triple parsed
// from the server's greeting banner. Used to gate features that
// require a minimum server version.
type Version struct {
	Major, Minor, Patch int
}

// MinSupportedVersion is the oldest server version this client is
// built for. Dial does not check the server against it, and features
// gated on 0.24.0 (oneshot single/consume, save modes, ranged
// listplaylistinfo) are unavailable at this version.
var MinSupportedVersion = Version{0, 23, 5}

func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses a "major.minor.patch" string as found in the
// "OK MPD <version>" greeting line.
func ParseVersion(s string) (Version, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("malformed version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("malformed version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater
// than other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpInt(v.Minor, other.Minor)
	}
	return cmpInt(v.Patch, other.Patch)
}

func (v Version) Less(other Version) bool    { return v.Compare(other) < 0 }
func (v Version) AtLeast(other Version) bool { return v.Compare(other) >= 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
