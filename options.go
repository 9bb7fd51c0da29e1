package xpevent

import (
	"github.com/obinnaokechukwu/xpevent/internal/platform"
	"github.com/sirupsen/logrus"
)

// Namespace selects the kernel object namespace of an event name.
type Namespace = platform.Namespace

// Re-export namespaces
const (
	NamespaceDefault = platform.NamespaceDefault
	NamespaceGlobal  = platform.NamespaceGlobal
	NamespaceLocal   = platform.NamespaceLocal
)

// FaultHandler receives panics contained at the callback boundary. It runs on
// the OS thread-pool thread that ran the callback.
type FaultHandler func(*InvocationFault)

// Option configures Create and Open.
type Option func(*options)

type options struct {
	logger    logrus.FieldLogger
	onFault   FaultHandler
	namespace Namespace
}

func newOptions(opts []Option) options {
	o := options{
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for lifecycle and fault messages.
// The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFaultHandler installs a handler for panics raised inside callbacks.
func WithFaultHandler(h FaultHandler) Option {
	return func(o *options) {
		o.onFault = h
	}
}

// WithNamespace places the event name in ns.
func WithNamespace(ns Namespace) Option {
	return func(o *options) {
		o.namespace = ns
	}
}
