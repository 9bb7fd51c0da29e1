package xpevent

// kernel is the slice of the OS this package talks to. Handles and wait
// handles are opaque address-sized values; ctx is the handles ID the wait
// trampoline hands back to dispatch.
type kernel interface {
	load() error
	createEvent(name string) (h uintptr, existed bool, err error)
	openEvent(name string) (uintptr, error)
	setEvent(h uintptr) error
	closeHandle(h uintptr) error
	// registerWait arms a persistent wait on h with no timeout.
	registerWait(h uintptr, ctx uintptr) (uintptr, error)
	// unregisterWait cancels wait and returns only once no callback for it
	// is running or queued.
	unregisterWait(wait uintptr) error
}

var sys = newSystemKernel()
