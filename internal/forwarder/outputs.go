package forwarder

import (
	"context"
	"fmt"
	"logup/internal/externalio/beats"
	"logup/internal/externalio/cloudwatch"
	"logup/internal/externalio/file"
	"logup/internal/externalio/gcplogging"
	"logup/internal/externalio/journald"
	"logup/internal/externalio/kafka"
	"logup/internal/externalio/nats"
	"logup/internal/externalio/newrelic"
	"logup/internal/global"
)

// Opens every configured remote destination. Modules opened before a failure are returned for cleanup.
func (daemon *Daemon) openOutputs(ctx context.Context) (modules []output, err error) {
	namespace := []string{global.NSFwd, global.NSOut}

	add := func(name string, module OutputModule) {
		modules = append(modules, output{name: name, module: module})
	}

	fileMod, err := file.NewOutput(namespace, daemon.cfg.FilePath)
	if err != nil {
		err = fmt.Errorf("failed to open file output: %w", err)
		return
	}
	if fileMod != nil {
		add(global.NSoFile, fileMod)
	}

	jrnlMod, err := journald.NewOutput(namespace, daemon.cfg.JournaldURL, daemon.cfg.JournaldIdentifier)
	if err != nil {
		err = fmt.Errorf("failed to setup journald output: %w", err)
		return
	}
	if jrnlMod != nil {
		add(global.NSoJrnl, jrnlMod)
	}

	beatsMod, err := beats.NewOutput(namespace, daemon.cfg.BeatsAddress)
	if err != nil {
		err = fmt.Errorf("failed to setup beats output: %w", err)
		return
	}
	if beatsMod != nil {
		add(global.NSoBeats, beatsMod)
	}

	cwMod, err := cloudwatch.NewOutput(ctx, namespace, daemon.cfg.CloudWatchLogGroup, daemon.cfg.CloudWatchLogStream)
	if err != nil {
		err = fmt.Errorf("failed to setup CloudWatch output: %w", err)
		return
	}
	if cwMod != nil {
		add(global.NSoCW, cwMod)
	}

	nrMod, err := newrelic.NewOutput(namespace, daemon.cfg.NewRelicRegion, daemon.cfg.NewRelicAPIKey)
	if err != nil {
		err = fmt.Errorf("failed to setup New Relic output: %w", err)
		return
	}
	if nrMod != nil {
		add(global.NSoNR, nrMod)
	}

	gcpMod, err := gcplogging.NewOutput(ctx, namespace, daemon.cfg.GCPProjectID, daemon.cfg.GCPLogID)
	if err != nil {
		err = fmt.Errorf("failed to setup Google Cloud Logging output: %w", err)
		return
	}
	if gcpMod != nil {
		add(global.NSoGCP, gcpMod)
	}

	kafkaMod, err := kafka.NewOutput(namespace, daemon.cfg.KafkaBrokers, daemon.cfg.KafkaTopic)
	if err != nil {
		err = fmt.Errorf("failed to setup Kafka output: %w", err)
		return
	}
	if kafkaMod != nil {
		add(global.NSoKafka, kafkaMod)
	}

	natsMod, err := nats.NewOutput(ctx, namespace, daemon.cfg.NATSURL, daemon.cfg.NATSSubject)
	if err != nil {
		err = fmt.Errorf("failed to setup NATS output: %w", err)
		return
	}
	if natsMod != nil {
		add(global.NSoNATS, natsMod)
	}
	return
}
