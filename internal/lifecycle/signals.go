package lifecycle

import (
	"context"
	"logup/internal/global"
	"logup/internal/logctx"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

type DaemonLike interface {
	Shutdown() (err error)
}

// Handles incoming exit signals from external sources.
// Initiates daemon shutdown on the first signal and returns once it completed.
// Returns without shutting down when ctx ends first.
func SignalHandler(ctx context.Context, daemonManager DaemonLike) {
	sigChan := notifyShutdownSignals()
	defer signal.Stop(sigChan)

	awaitShutdown(ctx, sigChan, daemonManager)
}

// Channel receiving every signal that ends the program.
// SIGHUP also ends it since configuration is only read at startup.
func notifyShutdownSignals() (sigChan chan os.Signal) {
	sigChan = make(chan os.Signal, 10)
	signal.Notify(sigChan, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM, unix.SIGHUP)
	return
}

func awaitShutdown(ctx context.Context, sigChan <-chan os.Signal, daemonManager DaemonLike) (received bool) {
	select {
	case <-ctx.Done():
		return
	case sig := <-sigChan:
		received = true
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)
	}

	err := daemonManager.Shutdown()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Shutdown after signal reported: %v\n", err)
	}

	logger := logctx.GetLogger(ctx)
	if logger != nil {
		logger.Wake()
	}
	return
}
