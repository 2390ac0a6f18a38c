//go:build !windows

package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Context is cancelled on SIGINT or SIGTERM so a run can stop between images.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
