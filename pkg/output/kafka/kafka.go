package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericogr/pico-loops/pkg/config"
	"github.com/ericogr/pico-loops/pkg/output"
	"github.com/ericogr/pico-loops/pkg/sensor"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOutput publishes one JSON message per reading, keyed by source so a
// source always lands on the same partition.
type KafkaOutput struct {
	w     messageWriter
	runID string
}

func NewKafka(cfg config.KafkaConfig) (output.Output, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka output requires brokers and topic")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaOutput{w: w, runID: uuid.NewString()}, nil
}

type message struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	Raw       uint16    `json:"raw"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

func (k *KafkaOutput) Publish(readings []sensor.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(readings))
	for _, r := range readings {
		b, err := json.Marshal(message{RunID: k.runID, Source: r.Source, Raw: r.Raw, Value: r.Value, Timestamp: r.Timestamp})
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.Source), Value: b, Time: r.Timestamp})
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := k.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (k *KafkaOutput) Close() error { return k.w.Close() }
