package recipe

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// InterruptibleContext returns a context which is canceled when the program is
// interrupted (i.e. receiving SIGINT or SIGTERM). Canceling the context
// terminates the build step which is currently running.
func InterruptibleContext() (context.Context, context.CancelFunc) {
	ctx, canc := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case s := <-sig:
			log.Printf("received %v, stopping build", s)
		case <-ctx.Done():
		}
		// Subsequent signals will result in immediate termination, which is
		// useful in case a build step ignores SIGKILL of its process group
		// (e.g. when stuck in uninterruptible sleep):
		signal.Stop(sig)
		canc()
	}()
	return ctx, canc
}
