// Package xpevent provides a cross-process wake/notify primitive built on
// named kernel events.
//
// One process creates (or joins) a named event with Create; any process that
// knows the name can Open it and Wake it. The waiting process attaches a
// callback with Register, and the OS thread pool runs that callback each time
// the event is signaled, without polling and without a dedicated goroutine.
//
//	ev, err := xpevent.Create("evt-1")
//	if err != nil {
//		return err
//	}
//	defer ev.Close()
//
//	var woke atomic.Bool
//	if err := ev.Register(func() { woke.Store(true) }); err != nil {
//		return err
//	}
//
// and in another process:
//
//	ev, err := xpevent.Open("evt-1")
//	if err != nil {
//		return err
//	}
//	defer ev.Close()
//	ev.Wake()
//
// The event is auto-reset and carries no payload: a wake is observed by at
// most one callback invocation, and wakes that arrive before anyone observed
// the previous one collapse into it. There is no blocking wait; use Notify to
// receive wakes on a channel.
//
// Named kernel events are a Windows facility. On other platforms every
// constructor fails with an error matching ErrUnsupported.
package xpevent

import (
	"github.com/obinnaokechukwu/xpevent/internal/bindings"
	"github.com/obinnaokechukwu/xpevent/internal/platform"
)

// Init loads the OS bindings. Create and Open call it implicitly, but it
// can be called explicitly to check for errors. It is safe to call multiple
// times.
func Init() error {
	return sys.load()
}

// IsSupported reports whether the platform provides named kernel events and
// the OS bindings they need could be loaded.
func IsSupported() bool {
	return platform.SupportsNamedEvents && Init() == nil && bindings.IsLoaded()
}
