//go:build unix

package atexit_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/refgc/atexit"
)

func TestRunOnSignal(t *testing.T) {
	var h atexit.Hooks
	ran := make(chan struct{})
	h.Register("signal", func() { close(ran) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := h.RunOnSignal(ctx, syscall.SIGUSR1)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case sig := <-sigs:
		require.Equal(t, syscall.SIGUSR1, sig)
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not forwarded")
	}
	select {
	case <-ran:
	default:
		t.Fatal("hook did not run before forwarding")
	}
}
