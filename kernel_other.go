//go:build !windows

package xpevent

import "github.com/obinnaokechukwu/xpevent/internal/bindings"

type unsupportedKernel struct{}

func newSystemKernel() kernel {
	return unsupportedKernel{}
}

func (unsupportedKernel) load() error { return bindings.Load() }

func (unsupportedKernel) createEvent(string) (uintptr, bool, error) {
	return 0, false, ErrUnsupported
}

func (unsupportedKernel) openEvent(string) (uintptr, error) { return 0, ErrUnsupported }
func (unsupportedKernel) setEvent(uintptr) error            { return ErrUnsupported }
func (unsupportedKernel) closeHandle(uintptr) error         { return ErrUnsupported }

func (unsupportedKernel) registerWait(uintptr, uintptr) (uintptr, error) {
	return 0, ErrUnsupported
}

func (unsupportedKernel) unregisterWait(uintptr) error { return ErrUnsupported }
