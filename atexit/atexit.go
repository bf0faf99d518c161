// Package atexit runs registered callbacks once when the process is about to
// terminate. Go has no exit hooks of its own, so main must route its exit
// through Main, call Run itself, or arm RunOnSignal.
package atexit

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

type hook struct {
	name string
	f    func()
}

// Hooks is a set of callbacks run at most once, newest first.
type Hooks struct {
	m     sync.Mutex
	hooks []hook
	done  uint32
}

// Default is the process-wide hook set.
var Default = &Hooks{}

// Register adds f under name. It returns false once the hooks already ran.
func (h *Hooks) Register(name string, f func()) bool {
	h.m.Lock()
	defer h.m.Unlock()
	if h.done != 0 {
		return false
	}
	h.hooks = append(h.hooks, hook{name: name, f: f})
	return true
}

// Run calls every registered callback in reverse registration order.
// Subsequent calls do nothing.
func (h *Hooks) Run() {
	if atomic.LoadUint32(&h.done) == 1 {
		return
	}
	h.m.Lock()
	if h.done != 0 {
		h.m.Unlock()
		return
	}
	hooks := h.hooks
	h.hooks = nil
	atomic.StoreUint32(&h.done, 1)
	h.m.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i].f()
	}
}

func (h *Hooks) Pending() int {
	h.m.Lock()
	defer h.m.Unlock()
	return len(h.hooks)
}

// Names lists pending callbacks in the order they will run.
func (h *Hooks) Names() []string {
	h.m.Lock()
	defer h.m.Unlock()
	names := make([]string, 0, len(h.hooks))
	for i := len(h.hooks) - 1; i >= 0; i-- {
		names = append(names, h.hooks[i].name)
	}
	return names
}

// RunOnSignal runs the hooks when one of sigs arrives and then forwards the
// signal on the returned channel. Cancelling ctx stops listening.
func (h *Hooks) RunOnSignal(ctx context.Context, sigs ...os.Signal) <-chan os.Signal {
	in := make(chan os.Signal, 1)
	out := make(chan os.Signal, 1)
	signal.Notify(in, sigs...)
	go func() {
		defer signal.Stop(in)
		select {
		case sig := <-in:
			h.Run()
			out <- sig
		case <-ctx.Done():
		}
	}()
	return out
}

func Register(name string, f func()) bool {
	return Default.Register(name, f)
}

func Run() {
	Default.Run()
}

// Main runs f, then the Default hooks, and exits with f's status.
func Main(f func() int) {
	code := f()
	Default.Run()
	os.Exit(code)
}
