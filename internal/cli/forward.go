package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"logup/internal/forwarder"
	"logup/internal/global"
	"logup/internal/lifecycle"
	"logup/internal/logctx"
	"logup/pkg/logstream"
	"os"
	"time"

	"golang.org/x/term"
)

// Command line values that take precedence over the config file. Zero values (-1 for retries) mean unset.
type forwardOverrides struct {
	maxRecordSize   int
	queueCapacity   int
	maxRetries      int
	shutdownTimeout time.Duration
	flushPartial    bool
}

// Forwards stdin until end of stream or an exit signal
func ForwardMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) (err error) {
	var configPath string
	var overrides forwardOverrides

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	commandFlags.IntVar(&overrides.maxRecordSize, "max-record-size", 0, "Largest record in bytes before it is split without a newline")
	commandFlags.IntVar(&overrides.queueCapacity, "queue-capacity", 0, "Records each remote destination may hold before new ones are dropped")
	commandFlags.IntVar(&overrides.maxRetries, "max-retries", -1, "Extra delivery attempts for a failed record")
	commandFlags.DurationVar(&overrides.shutdownTimeout, "shutdown-timeout", 0, "Time allowed for queued records to be delivered on exit")
	commandFlags.BoolVar(&overrides.flushPartial, "flush-partial", false, "Forward trailing input without a newline at end of stream")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	commandFlags.Parse(args)

	logctx.SetLogLevel(ctx, global.Verbosity)
	ctx = logctx.AppendCtxTag(ctx, global.NSCLI)

	explicitConfig := false
	commandFlags.Visit(func(set *flag.Flag) {
		if set.Name == "c" || set.Name == "config" {
			explicitConfig = true
		}
	})

	daemonConfig, err := buildForwardConfig(configPath, explicitConfig, overrides, os.LookupEnv)
	if err != nil {
		return
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
			"Reading log data from the terminal, end input with Ctrl-D\n")
	}

	daemon := forwarder.NewDaemon(daemonConfig)
	err = daemon.Start(ctx)
	if err != nil {
		err = fmt.Errorf("failed to start forwarder: %w", err)
		return
	}

	err = lifecycle.NotifyReady(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}

	// Exit signals shut the daemon down while input may still be open
	signalCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	signalDone := make(chan struct{})
	go func() {
		defer close(signalDone)
		lifecycle.SignalHandler(signalCtx, daemon)
	}()

	runDone := make(chan error, 1)
	go func() {
		runDone <- daemon.Run(logstream.NewReaderSource(os.Stdin))
	}()

	var runErr error
	select {
	case runErr = <-runDone:
		stopSignals()
		<-signalDone
	case <-signalDone:
		// Read loop may stay blocked on input, the process exits without it
	}

	shutdownErr := daemon.Shutdown()
	if runErr != nil {
		err = fmt.Errorf("forwarding stopped: %w", runErr)
		return
	}
	if shutdownErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Not every queued record was delivered: %v\n", shutdownErr)
	}
	return
}

// Combines config file, command line and environment into the daemon config.
// A missing file at the default path is not an error.
func buildForwardConfig(configPath string, explicitConfig bool, overrides forwardOverrides, lookup func(string) (string, bool)) (daemonConfig forwarder.Config, err error) {
	var jsonCfg forwarder.JSONConfig
	if configPath != "" {
		jsonCfg, err = forwarder.LoadConfig(configPath)
		if err != nil {
			if explicitConfig || !errors.Is(err, fs.ErrNotExist) {
				return
			}
			err = nil
		}
	}

	daemonConfig, err = jsonCfg.NewDaemonConf()
	if err != nil {
		err = fmt.Errorf("invalid configuration: %w", err)
		return
	}

	if overrides.maxRecordSize != 0 {
		daemonConfig.MaxRecordSize = overrides.maxRecordSize
	}
	if overrides.queueCapacity != 0 {
		daemonConfig.QueueCapacity = overrides.queueCapacity
	}
	if overrides.maxRetries >= 0 {
		daemonConfig.MaxRetries = overrides.maxRetries
	}
	if overrides.shutdownTimeout != 0 {
		daemonConfig.ShutdownTimeout = overrides.shutdownTimeout
	}
	if overrides.flushPartial {
		daemonConfig.FlushPartialOnExit = true
	}

	daemonConfig.ApplyEnvironment(lookup)
	return
}
