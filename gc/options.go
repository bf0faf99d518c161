package gc

import (
	"log"

	"github.com/funny-falcon/refgc/atexit"
)

type options struct {
	log              *log.Logger
	hooks            *atexit.Hooks
	collectOnRelease bool
}

type Option func(*options)

func defaultOptions() options {
	return options{collectOnRelease: true}
}

// WithLogger traces attach, release and free events to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithExitHooks arms a Shutdown of the registry on h the first time an
// address is tracked.
func WithExitHooks(h *atexit.Hooks) Option {
	return func(o *options) { o.hooks = h }
}

// WithoutCollectOnRelease stops Release from sweeping. Garbage then waits
// for an explicit Collect or Shutdown.
func WithoutCollectOnRelease() Option {
	return func(o *options) { o.collectOnRelease = false }
}
