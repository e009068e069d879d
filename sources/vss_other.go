//go:build !windows
// +build !windows

package sources

import (
	"github.com/pkg/errors"
)

// WMIShadowEnumerator needs WMI and so only works on Windows.
type WMIShadowEnumerator struct{}

func (self WMIShadowEnumerator) ShadowCopies(path string) ([]*ShadowCopy, error) {
	return nil, errors.New("Shadow copies are only supported on Windows")
}
