// Package bindings loads the kernel32 entry points xpevent needs beyond what
// golang.org/x/sys/windows wraps, and owns the single wait trampoline handed
// to the OS thread pool.
//
// purego allocates callbacks from a fixed-size table that is never freed, so
// the trampoline is created once per process and every registration shares
// it. The per-registration state travels in the opaque context argument.
package bindings

import "github.com/pkg/errors"

// ErrUnsupported is returned on platforms without named kernel events.
var ErrUnsupported = errors.New("xpevent: named kernel events are not supported on this platform")

// ErrLibraryNotFound is returned when kernel32 or one of its procedures
// cannot be resolved.
var ErrLibraryNotFound = errors.New("xpevent: kernel32 procedure not found")
