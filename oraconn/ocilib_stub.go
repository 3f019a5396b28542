//go:build !unix

package oraconn

import "errors"

// NewNativeDriver is only implemented for unix-like systems. Windows needs
// a LoadLibrary based binding; until then use a pooled driver supplied by
// the application.
func NewNativeDriver(libPath string) (Driver, error) {
	return nil, errors.New("native client library loading is not supported on this platform")
}
