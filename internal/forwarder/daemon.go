// Daemon forwarding one input stream to the local echo and every configured remote destination
package forwarder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"logup/internal/assembler"
	"logup/internal/externalio/server"
	"logup/internal/externalio/stdout"
	"logup/internal/fanout"
	"logup/internal/global"
	"logup/internal/lifecycle"
	"logup/internal/logctx"
	"logup/internal/metrics"
	"logup/internal/queue/bounded"
	"logup/pkg/logstream"
	"net/http"
	"os"
	"time"

	"github.com/pbnjay/memory"
)

// Create new forwarding daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		Metrics: &MetricStorage{},
	}
	return
}

// Adds an already opened destination. It is queued like any configured remote output
// and shut down by the daemon. Only valid before Start.
func (daemon *Daemon) AttachOutput(name string, module OutputModule) {
	daemon.attached = append(daemon.attached, output{name: name, module: module})
}

// Redirects the local echo. Only valid before Start.
func (daemon *Daemon) SetEchoWriter(writer io.Writer) {
	daemon.echoWriter = writer
}

// Builds the pipeline back to front - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon, keeping only the logger
	daemon.ctx, daemon.cancel = context.WithCancel(logctx.Detach(globalCtx))
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSFwd)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	daemon.cfg.setDefaults()
	err = daemon.cfg.validate()
	if err != nil {
		err = fmt.Errorf("invalid configuration: %w", err)
		daemon.Shutdown()
		return
	}

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %w", err)
		daemon.Shutdown()
		return
	}
	global.PID = os.Getpid()

	daemon.Registry = metrics.NewRegistry()

	// Local echo always runs first and unqueued
	if !daemon.cfg.DisableEcho {
		echo := stdout.NewOutput([]string{global.NSFwd, global.NSOut})
		if daemon.echoWriter != nil {
			echo = stdout.NewOutputTo([]string{global.NSFwd, global.NSOut}, daemon.echoWriter)
		}
		daemon.outputs = append(daemon.outputs, output{name: global.NSoStdout, module: echo, direct: true})
	}

	// Remote destinations
	opened, err := daemon.openOutputs(daemon.ctx)
	daemon.outputs = append(daemon.outputs, opened...)
	daemon.outputs = append(daemon.outputs, daemon.attached...)
	daemon.attached = nil
	if err != nil {
		daemon.Shutdown()
		return
	}

	var remotes int
	for _, out := range daemon.outputs {
		if !out.direct {
			remotes++
		}
	}
	if len(daemon.outputs) == 0 {
		err = fmt.Errorf("no outputs enabled: echo is disabled and no remote destination is configured")
		daemon.Shutdown()
		return
	}

	configured := daemon.cfg.QueueCapacity
	if daemon.cfg.clampQueueCapacity(memory.TotalMemory(), remotes) {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Queue capacity lowered from %d to %d records to bound memory use of %d queue(s) with %d byte records\n",
			configured, daemon.cfg.QueueCapacity, remotes, daemon.cfg.MaxRecordSize)
	}

	// Stage 3 - Delivery queues and fan-out targets
	var targets []fanout.Target
	for index := range daemon.outputs {
		out := &daemon.outputs[index]
		if out.direct {
			targets = append(targets, fanout.Target{Name: out.name, Sink: out.module})
			continue
		}

		out.queue, err = bounded.New(daemon.ctx,
			[]string{global.NSFwd, global.NSOut, out.name},
			out.module,
			daemon.cfg.QueueCapacity,
			daemon.cfg.MaxRetries)
		if err != nil {
			err = fmt.Errorf("failed creating delivery queue for %s: %w", out.name, err)
			daemon.Shutdown()
			return
		}
		daemon.Registry.Add(out.queue)
		targets = append(targets, fanout.Target{Name: out.name, Sink: out.queue})
	}

	// Stage 2 - Fan-out
	daemon.fanout, err = fanout.New([]string{global.NSFwd}, targets...)
	if err != nil {
		err = fmt.Errorf("failed creating fan-out: %w", err)
		daemon.Shutdown()
		return
	}
	daemon.Registry.Add(daemon.fanout)

	// Stage 1 - Record reassembly
	daemon.assembler, err = assembler.New([]string{global.NSFwd}, daemon.fanout, daemon.cfg.MaxRecordSize)
	if err != nil {
		err = fmt.Errorf("failed creating record assembler: %w", err)
		daemon.Shutdown()
		return
	}
	daemon.Registry.Add(daemon.assembler)
	daemon.Registry.Add(daemon)

	// Metric Server
	if daemon.cfg.MetricServerEnabled {
		serverCtx := logctx.AppendCtxTag(daemon.ctx, global.NSMetric)
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

		daemon.MetricServer = server.SetupListener(serverCtx,
			daemon.cfg.MetricServerPort,
			daemon.Registry.Gatherer(),
			daemon.Registry.Snapshot)
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			server.Start(serverCtx, daemon.MetricServer)
		}()
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Startup complete (%d output(s), max record %d bytes, queue capacity %d, retries %d).\n",
		len(daemon.outputs), daemon.cfg.MaxRecordSize, daemon.cfg.QueueCapacity, daemon.cfg.MaxRetries)
	return
}

// Drives the read loop over source until end of stream or the first fatal error.
// Errors caused by a concurrent Shutdown are not reported.
func (daemon *Daemon) Run(source logstream.Source) (err error) {
	if daemon.assembler == nil {
		err = fmt.Errorf("daemon is not started")
		return
	}

	ctx := logctx.AppendCtxTag(daemon.ctx, global.NSLoop)
	counted := countingSource{inner: source, metrics: daemon.Metrics}

	stats, err := ReadAndWriteLoop(ctx, counted, daemon.assembler, daemon.cfg.ReadBufferSize)
	if err != nil {
		if daemon.stopping.Load() {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Read loop stopped by shutdown: %v\n", err)
			err = nil
		}
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"End of input after %d chunk(s), %d byte(s)\n", stats.Chunks, stats.Bytes)

	pending := daemon.assembler.Pending()
	if pending == 0 {
		return
	}
	if !daemon.cfg.FlushPartialOnExit {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Discarding %d byte(s) of unterminated input at end of stream\n", pending)
		return
	}
	err = daemon.assembler.Flush(ctx, time.Now())
	if err != nil {
		err = fmt.Errorf("failed flushing final partial record: %w", err)
		if daemon.stopping.Load() {
			err = nil
		}
	}
	return
}

// Stops accepting records, lets every queue deliver what it holds within the shutdown timeout,
// then closes all outputs. Safe to call more than once; later calls return the first result.
func (daemon *Daemon) Shutdown() (err error) {
	daemon.shutdownOnce.Do(func() {
		daemon.shutdownErr = daemon.shutdown()
	})
	err = daemon.shutdownErr
	return
}

func (daemon *Daemon) shutdown() (err error) {
	daemon.stopping.Store(true)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")
	notifyErr := lifecycle.NotifyStopping(daemon.ctx)
	if notifyErr != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Systemd notify stopping failed: %v\n", notifyErr)
	}

	var errs []error

	// Phase 1: sever producers from every queue
	for _, out := range daemon.outputs {
		if out.queue != nil {
			out.queue.Close()
		}
	}

	// Phase 2: join every queue worker against one shared deadline
	timeout := daemon.cfg.ShutdownTimeout
	if timeout == 0 {
		timeout = global.DefaultShutdownTimeout
	}
	notifyErr = lifecycle.NotifyExtendTimeout(daemon.ctx, timeout)
	if notifyErr != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Systemd notify timeout extension failed: %v\n", notifyErr)
	}

	waitCtx, cancelWait := context.WithTimeout(daemon.ctx, timeout)
	for _, out := range daemon.outputs {
		if out.queue == nil {
			continue
		}
		waitErr := out.queue.Wait(waitCtx)
		if waitErr != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "%v\n", waitErr)
			errs = append(errs, waitErr)
		}
	}
	cancelWait()

	// Release destinations
	for _, out := range daemon.outputs {
		closeErr := out.module.Shutdown()
		if closeErr != nil {
			closeErr = fmt.Errorf("failed closing %s output: %w", out.name, closeErr)
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "%v\n", closeErr)
			errs = append(errs, closeErr)
		}
	}
	for _, out := range daemon.attached {
		closeErr := out.module.Shutdown()
		if closeErr != nil {
			errs = append(errs, fmt.Errorf("failed closing %s output: %w", out.name, closeErr))
		}
	}

	// Stop metric server
	if daemon.MetricServer != nil {
		stopCtx, cancelStop := context.WithTimeout(daemon.ctx, global.HTTPWriteTimeout)
		serverErr := daemon.MetricServer.Shutdown(stopCtx)
		cancelStop()
		if serverErr != nil && serverErr != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", serverErr)
		}
	}

	daemon.cancel()
	daemon.wg.Wait()

	err = errors.Join(errs...)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Daemon shutdown completed with %d error(s)\n", len(errs))
	} else {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	}
	return
}
