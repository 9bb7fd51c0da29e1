//go:build windows

package xpevent

import (
	"github.com/obinnaokechukwu/xpevent/internal/bindings"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// Rights needed to wait on and signal an event opened by name.
const openAccess = windows.SYNCHRONIZE | windows.EVENT_MODIFY_STATE

type windowsKernel struct{}

func newSystemKernel() kernel {
	bindings.SetDispatcher(dispatch)
	return windowsKernel{}
}

func (windowsKernel) load() error {
	return bindings.Load()
}

func (windowsKernel) createEvent(name string) (uintptr, bool, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, false, errors.Wrap(ErrInvalidName, err.Error())
	}
	// Auto-reset, initially unsignaled.
	h, err := windows.CreateEvent(nil, 0, 0, p)
	if h == 0 {
		return 0, false, err
	}
	return uintptr(h), errors.Is(err, windows.ERROR_ALREADY_EXISTS), nil
}

func (windowsKernel) openEvent(name string) (uintptr, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidName, err.Error())
	}
	h, err := windows.OpenEvent(openAccess, false, p)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func (windowsKernel) setEvent(h uintptr) error {
	return windows.SetEvent(windows.Handle(h))
}

func (windowsKernel) closeHandle(h uintptr) error {
	return windows.CloseHandle(windows.Handle(h))
}

func (windowsKernel) registerWait(h uintptr, ctx uintptr) (uintptr, error) {
	wait, err := bindings.RegisterWait(windows.Handle(h), ctx)
	return uintptr(wait), err
}

func (windowsKernel) unregisterWait(wait uintptr) error {
	return bindings.UnregisterWait(windows.Handle(wait))
}
