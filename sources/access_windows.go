//go:build windows
// +build windows

package sources

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// IsAccessDenied reports errors caused by another process holding
// the file open, as the OS does for a live $MFT.
func IsAccessDenied(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION) ||
		errors.Is(err, windows.ERROR_ACCESS_DENIED) ||
		errors.Is(err, os.ErrPermission)
}
