package sources

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// c:\Windows is read through \\.\c: and \Windows.
	driveRegex = regexp.MustCompile(
		`(?i)^[/\\]?([a-z]:)(.*)`)
	deviceDriveRegex = regexp.MustCompile(
		`(?i)^(\\\\[\?\.]\\[a-z]:)(.*)`)
	deviceDirectoryRegex = regexp.MustCompile(
		`(?i)^(\\\\[\?\.]\\GLOBALROOT\\Device\\[^/\\]+)([/\\]?.*)`)

	// Relative inputs are resolved against the working directory.
	absolutePath = filepath.Abs
)

// DeviceAndSubpath splits a path into the raw device holding it and
// the path inside that device.
func DeviceAndSubpath(path string) (device string, subpath string, err error) {
	path = strings.Replace(path, "/", "\\", -1)

	m := deviceDriveRegex.FindStringSubmatch(path)
	if len(m) != 0 {
		return m[1], cleanSubpath(m[2]), nil
	}

	m = driveRegex.FindStringSubmatch(path)
	if len(m) != 0 {
		return "\\\\.\\" + m[1], cleanSubpath(m[2]), nil
	}

	m = deviceDirectoryRegex.FindStringSubmatch(path)
	if len(m) != 0 {
		return m[1], cleanSubpath(m[2]), nil
	}

	return "", path, errors.Errorf("Unsupported device path %v", path)
}

// ShadowPath gives the location of path inside a shadow copy of its
// volume.
func ShadowPath(shadow *ShadowCopy, path string) (string, error) {
	_, subpath, err := DeviceAndSubpath(path)
	if err != nil {
		abs, abs_err := absolutePath(path)
		if abs_err != nil {
			return "", err
		}
		_, subpath, err = DeviceAndSubpath(abs)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(shadow.DeviceObject, "\\") + subpath, nil
}

func cleanSubpath(path string) string {
	components := []string{}
	for _, component := range strings.Split(path, "\\") {
		switch component {
		case "", ".":
			continue
		case "..":
			if len(components) > 0 {
				components = components[:len(components)-1]
			}
		default:
			components = append(components, component)
		}
	}

	if len(components) == 0 {
		return ""
	}
	return "\\" + strings.Join(components, "\\")
}
