//go:build windows
// +build windows

package sources

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows"
)

var shadowNumberRegex = regexp.MustCompile(`(?i)HarddiskVolumeShadowCopy(\d+)$`)

type Win32_ShadowCopy struct {
	DeviceObject string
	VolumeName   string
	InstallDate  time.Time
}

// WMIShadowEnumerator lists snapshots with Win32_ShadowCopy.
type WMIShadowEnumerator struct{}

func (self WMIShadowEnumerator) ShadowCopies(path string) ([]*ShadowCopy, error) {
	volume, err := volumeGUID(path)
	if err != nil {
		return nil, err
	}

	var rows []Win32_ShadowCopy
	err = wmi.Query("SELECT DeviceObject, VolumeName, InstallDate "+
		"FROM Win32_ShadowCopy", &rows)
	if err != nil {
		return nil, errors.Wrap(err, "Win32_ShadowCopy")
	}

	result := []*ShadowCopy{}
	for _, row := range rows {
		if !strings.EqualFold(row.VolumeName, volume) {
			continue
		}

		m := shadowNumberRegex.FindStringSubmatch(row.DeviceObject)
		if len(m) == 0 {
			continue
		}

		number, _ := strconv.Atoi(m[1])
		result = append(result, &ShadowCopy{
			Number:       number,
			Created:      row.InstallDate.UTC(),
			DeviceObject: row.DeviceObject,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})

	return result, nil
}

// volumeGUID gives the \\?\Volume{...}\ name of the volume holding
// path.
func volumeGUID(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	mount_point, err := windows.UTF16PtrFromString(
		filepath.VolumeName(abs) + "\\")
	if err != nil {
		return "", err
	}

	buf := make([]uint16, windows.MAX_PATH)
	err = windows.GetVolumeNameForVolumeMountPoint(
		mount_point, &buf[0], uint32(len(buf)))
	if err != nil {
		return "", errors.Wrapf(err, "Volume name for %v", abs)
	}

	return windows.UTF16ToString(buf), nil
}
