// Produces records to a Kafka topic
package kafka

import (
	"bytes"
	"context"
	"fmt"
	"logup/internal/global"
	"logup/pkg/logstream"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer side of a kafka-go writer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type OutModule struct {
	Namespace []string
	sink      messageWriter
	key       []byte // partition key, the local hostname keeps one host's records ordered
}

// Creates new Kafka output module. Returns nil nil if no brokers.
func NewOutput(namespace []string, brokers []string, topic string) (module *OutModule, err error) {
	if len(brokers) == 0 {
		return
	}
	if topic == "" {
		err = fmt.Errorf("kafka output requires a topic")
		return
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		Async:        false,
		MaxAttempts:  1, // retries belong to the delivery queue
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: global.DefaultRequestTimeout,
	}

	module = newOutput(namespace, writer)
	return
}

func newOutput(namespace []string, writer messageWriter) (module *OutModule) {
	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoKafka),
		sink:      writer,
		key:       []byte(global.Hostname),
	}
	return
}

// Produces one record and waits for the broker acknowledgement
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	err = mod.sink.WriteMessages(ctx, kafkago.Message{
		Key:   mod.key,
		Value: bytes.Clone(logstream.TrimNewline(payload)),
		Time:  timestamp,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(global.ProgBaseName)},
		},
	})
	if err != nil {
		err = fmt.Errorf("failed producing record to kafka: %w", err)
		return
	}
	return
}

// Gracefully stops module, flushing pending messages
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.sink != nil {
		err = mod.sink.Close()
	}
	return
}
