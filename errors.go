package xpevent

import (
	"fmt"
	"os"

	"github.com/obinnaokechukwu/xpevent/internal/bindings"
	"github.com/obinnaokechukwu/xpevent/internal/platform"
	"github.com/pkg/errors"
)

// Common errors
var (
	// ErrNotFound indicates Open found no event of that name.
	// Callers usually treat it as "producer not ready yet".
	ErrNotFound = errors.New("xpevent: event not found")

	// ErrPermissionDenied indicates the event exists but is not accessible.
	ErrPermissionDenied = errors.New("xpevent: permission denied")

	// ErrRegistration indicates the OS wait facility refused a subscription.
	ErrRegistration = errors.New("xpevent: wait registration refused")

	// ErrClosed indicates the event has been closed.
	ErrClosed = errors.New("xpevent: event is closed")

	// ErrNilCallback is returned by Register for a nil callback.
	ErrNilCallback = errors.New("xpevent: callback cannot be nil")

	// ErrUnsupported indicates the platform has no named kernel events.
	ErrUnsupported = bindings.ErrUnsupported

	// ErrInvalidName indicates a name the kernel would reject.
	ErrInvalidName = platform.ErrInvalidName
)

// Kind classifies an *Error.
type Kind int

// Error kinds.
const (
	KindCreation Kind = iota + 1
	KindOpen
	KindNotFound
	KindPermission
	KindRegistration
	KindSignal
	KindInvalidName
	KindUnsupported
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCreation:
		return "creation"
	case KindOpen:
		return "open"
	case KindNotFound:
		return "not found"
	case KindPermission:
		return "permission denied"
	case KindRegistration:
		return "registration"
	case KindSignal:
		return "signal"
	case KindInvalidName:
		return "invalid name"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by Create, Open, Wake and Register.
type Error struct {
	Op   string // Operation that failed
	Name string // Kernel object name
	Kind Kind
	Err  error // Underlying OS or validation error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("xpevent %s %q: %s: %v", e.Op, e.Name, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind so callers can write
// errors.Is(err, xpevent.ErrNotFound).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrPermissionDenied:
		return e.Kind == KindPermission || errors.Is(e.Err, os.ErrPermission)
	case ErrRegistration:
		return e.Kind == KindRegistration
	}
	return false
}

// classify wraps an OS error from op into an *Error, picking fallback when
// nothing more specific applies.
func classify(op, name string, fallback Kind, err error) error {
	kind := fallback
	switch {
	case errors.Is(err, ErrUnsupported):
		kind = KindUnsupported
	case errors.Is(err, ErrInvalidName):
		kind = KindInvalidName
	case fallback == KindOpen && errors.Is(err, os.ErrNotExist):
		kind = KindNotFound
	case fallback == KindOpen && errors.Is(err, os.ErrPermission):
		kind = KindPermission
	}
	return &Error{Op: op, Name: name, Kind: kind, Err: err}
}

// IsNotFound reports whether err means the named event does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// InvocationFault describes a panic raised by a user callback while the OS
// thread pool was running it. It is contained at the trampoline and never
// returned from an API call; see WithFaultHandler.
type InvocationFault struct {
	Name  string // Event the callback was registered on
	Value any    // Value passed to panic
	Stack []byte // Stack of the panicking goroutine
}

// Error implements the error interface.
func (f *InvocationFault) Error() string {
	return fmt.Sprintf("xpevent: callback for %q panicked: %v", f.Name, f.Value)
}
