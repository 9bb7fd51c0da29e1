// Package platform provides platform detection and kernel object naming for
// xpevent. Named kernel events exist only on Windows; everywhere else the
// public API reports ErrUnsupported.
package platform

import (
	"runtime"
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// SupportsNamedEvents indicates whether the OS provides named kernel events
// with thread-pool wait registration.
const SupportsNamedEvents = runtime.GOOS == "windows"

// MaxNameLength is the longest object name, in UTF-16 code units, the object
// manager accepts for an event (MAX_PATH).
const MaxNameLength = 260

// ErrInvalidName is returned for names that cannot be passed to the kernel at
// all. Anything else, path separators included, is left for the kernel to
// judge.
var ErrInvalidName = errors.New("xpevent: invalid event name")

// Namespace selects the kernel object namespace an event name lives in.
type Namespace string

const (
	// NamespaceDefault lets the OS pick the session namespace.
	NamespaceDefault Namespace = ""
	// NamespaceGlobal makes the object visible across terminal sessions.
	NamespaceGlobal Namespace = `Global\`
	// NamespaceLocal pins the object to the caller's session.
	NamespaceLocal Namespace = `Local\`
)

// ParseNamespace maps a user-facing namespace keyword to a Namespace.
// Accepted values are "", "default", "global" and "local" (case-insensitive).
func ParseNamespace(s string) (Namespace, error) {
	switch strings.ToLower(s) {
	case "", "default":
		return NamespaceDefault, nil
	case "global":
		return NamespaceGlobal, nil
	case "local":
		return NamespaceLocal, nil
	}
	return NamespaceDefault, errors.Errorf("xpevent: unknown namespace %q", s)
}

// ObjectName validates name and prefixes it with ns. With NamespaceDefault the
// name is passed through untouched, so raw kernel names such as
// `Global\evt-1` or `Session\1\evt-1` work as given.
//
// Examples:
//   - ObjectName(NamespaceDefault, "evt-1") -> "evt-1"
//   - ObjectName(NamespaceGlobal, "evt-1")  -> `Global\evt-1`
func ObjectName(ns Namespace, name string) (string, error) {
	switch ns {
	case NamespaceDefault, NamespaceGlobal, NamespaceLocal:
	default:
		return "", errors.Wrapf(ErrInvalidName, "unknown namespace %q", string(ns))
	}
	if name == "" {
		return "", errors.Wrap(ErrInvalidName, "empty name")
	}
	if strings.ContainsRune(name, 0) {
		return "", errors.Wrapf(ErrInvalidName, "%q contains NUL", name)
	}
	full := name
	if ns != NamespaceDefault {
		full = string(ns) + name
	}
	if n := len(utf16.Encode([]rune(full))); n > MaxNameLength {
		return "", errors.Wrapf(ErrInvalidName, "%d UTF-16 units exceeds %d", n, MaxNameLength)
	}
	return full, nil
}
