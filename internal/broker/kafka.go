package broker

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"
)

// KafkaSource is a Source backed by a kafka-go reader.
type KafkaSource struct {
	reader *kafka.Reader
}

// NewKafkaSource connects a consumer group reader against brokers/topic.
func NewKafkaSource(brokers, topic, groupID string) *KafkaSource {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: splitBrokers(brokers),
		Topic:   topic,
		GroupID: groupID,
	})
	return &KafkaSource{reader: reader}
}

// Receive blocks until the next message's value is available.
func (s *KafkaSource) Receive(ctx context.Context) ([]byte, error) {
	msg, err := s.reader.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	return msg.Value, nil
}

// Close releases the consumer's connections.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

// KafkaSink is a Sink backed by a kafka-go writer.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink connects a producer writer against brokers/topic.
func NewKafkaSink(brokers, topic string) *KafkaSink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(splitBrokers(brokers)...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaSink{writer: writer}
}

// Send publishes payload as a single message's value.
func (s *KafkaSink) Send(ctx context.Context, payload []byte) error {
	return s.writer.WriteMessages(ctx, kafka.Message{Value: payload})
}

// Close flushes and releases the producer's connections.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func splitBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
