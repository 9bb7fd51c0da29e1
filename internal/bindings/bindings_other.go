//go:build !windows

package bindings

// Load always fails off Windows.
func Load() error {
	return ErrUnsupported
}

// IsLoaded reports whether Load succeeded.
func IsLoaded() bool {
	return false
}
