//go:build windows

package bindings

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// WT_EXECUTEDEFAULT: callbacks run on a non-I/O worker thread and the wait
// stays armed after each invocation.
const wtExecuteDefault = 0x00000000

var (
	kernel32                        = windows.NewLazySystemDLL("kernel32.dll")
	procRegisterWaitForSingleObject = kernel32.NewProc("RegisterWaitForSingleObject")
	procUnregisterWaitEx            = kernel32.NewProc("UnregisterWaitEx")

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

var (
	trampolineOnce sync.Once
	trampolinePtr  uintptr
	dispatcher     atomic.Pointer[func(ctx uintptr)]
)

// IsLoaded reports whether Load succeeded.
func IsLoaded() bool {
	return loaded
}

// Load resolves the kernel32 procedures. It is safe to call multiple times;
// subsequent calls are no-ops.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	if err := kernel32.Load(); err != nil {
		return errors.Wrapf(ErrLibraryNotFound, "loading kernel32.dll: %v", err)
	}
	for _, p := range []*windows.LazyProc{procRegisterWaitForSingleObject, procUnregisterWaitEx} {
		if err := p.Find(); err != nil {
			return errors.Wrapf(ErrLibraryNotFound, "%s: %v", p.Name, err)
		}
	}
	return nil
}

// SetDispatcher installs the function the trampoline forwards every wait
// completion to. It receives the opaque context given to RegisterWait.
func SetDispatcher(fn func(ctx uintptr)) {
	dispatcher.Store(&fn)
}

// waitTrampoline matches WAITORTIMERCALLBACK:
// VOID CALLBACK WaitOrTimerCallback(PVOID lpParameter, BOOLEAN TimerOrWaitFired)
// Waits are registered with INFINITE, so TimerOrWaitFired is always FALSE.
func waitTrampoline(ctx uintptr, _ uintptr) uintptr {
	if fn := dispatcher.Load(); fn != nil && *fn != nil {
		(*fn)(ctx)
	}
	return 0
}

func trampoline() uintptr {
	trampolineOnce.Do(func() {
		trampolinePtr = purego.NewCallback(waitTrampoline)
	})
	return trampolinePtr
}

// RegisterWait subscribes the trampoline to every signal of object with an
// infinite timeout. ctx is passed back verbatim on each invocation.
func RegisterWait(object windows.Handle, ctx uintptr) (windows.Handle, error) {
	if err := Load(); err != nil {
		return 0, err
	}
	var wait windows.Handle
	r1, _, e1 := procRegisterWaitForSingleObject.Call(
		uintptr(unsafe.Pointer(&wait)),
		uintptr(object),
		trampoline(),
		ctx,
		uintptr(windows.INFINITE),
		wtExecuteDefault,
	)
	if r1 == 0 {
		return 0, callErr(e1, windows.ERROR_INVALID_PARAMETER)
	}
	return wait, nil
}

// callErr picks the errno LazyProc.Call captured on the calling thread.
func callErr(e1 error, fallback windows.Errno) error {
	if errno, ok := e1.(windows.Errno); ok && errno != 0 {
		return errno
	}
	return fallback
}

// UnregisterWait cancels wait and blocks until every callback already
// queued or running for it has returned. It must not be called from the
// trampoline itself.
func UnregisterWait(wait windows.Handle) error {
	if err := Load(); err != nil {
		return err
	}
	// INVALID_HANDLE_VALUE as the completion event makes the call blocking.
	r1, _, e1 := procUnregisterWaitEx.Call(uintptr(wait), uintptr(windows.InvalidHandle))
	if r1 == 0 {
		return callErr(e1, windows.ERROR_INVALID_HANDLE)
	}
	return nil
}
