package constants

import "fmt"

// Version is a binary encoded semver.
type Version uint32

func newVer(major, minor, patch uint8) Version {
	return Version(uint32(major)<<16 | uint32(minor)<<8 | uint32(patch))
}

func (ve Version) Ints() (uint32, uint32, uint32) {
	v := uint32(ve)
	return (v & majorOnlyMask) >> 16, (v & minorOnlyMask) >> 8, v & patchOnlyMask
}

func (ve Version) String() string {
	vmj, vmi, vp := ve.Ints()
	return fmt.Sprintf("%d.%d.%d", vmj, vmi, vp)
}

func (ve Version) EqMajorMinor(v2 Version) bool {
	return ve&minorMask == v2&minorMask
}

const (
	minorMask = 0xffff00

	majorOnlyMask = 0xff0000
	minorOnlyMask = 0x00ff00
	patchOnlyMask = 0x0000ff
)

var (
	EthRPCAPIVersion0 = newVer(1, 0, 0)

	BuildVersion = "0.1.0"
)

// CurrentCommit is set by the linker.
var CurrentCommit string

func UserVersion() string {
	return BuildVersion + CurrentCommit
}
