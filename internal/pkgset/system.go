package pkgset

import (
	"fmt"
	"runtime"
	"strings"
)

// SystemID identifies a target platform for which a package collection is
// built, in "<arch>-<os>" form (e.g. "x86_64-linux").
type SystemID string

// ParseSystem validates the "<arch>-<os>" shape of a system identifier.
func ParseSystem(s string) (SystemID, error) {
	arch, os, ok := strings.Cut(s, "-")
	if !ok || arch == "" || os == "" {
		return "", fmt.Errorf("invalid system identifier %q: want \"<arch>-<os>\"", s)
	}
	return SystemID(s), nil
}

// Arch returns the architecture half of the identifier.
func (s SystemID) Arch() string {
	arch, _, _ := strings.Cut(string(s), "-")
	return arch
}

// OS returns the operating-system half of the identifier.
func (s SystemID) OS() string {
	_, os, _ := strings.Cut(string(s), "-")
	return os
}

func (s SystemID) String() string {
	return string(s)
}

// CurrentSystem derives the host's system identifier from the Go runtime.
func CurrentSystem() SystemID {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	}
	return SystemID(arch + "-" + runtime.GOOS)
}
