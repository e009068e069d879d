//go:build !windows
// +build !windows

package sources

import (
	"os"

	"github.com/pkg/errors"
)

func IsAccessDenied(err error) bool {
	return errors.Is(err, os.ErrPermission)
}
