package config

import (
	"github.com/segmentio/kafka-go"
	"strings"
	"time"
)

// Enabled reports whether any broker is configured.
func (k Kafka) Enabled() bool {
	return len(k.BrokerURLs()) > 0
}

func (k Kafka) BrokerURLs() []string {
	var urls []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			urls = append(urls, b)
		}
	}
	return urls
}

func NewKafkaWriter(k Kafka) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(k.BrokerURLs()...),
		Topic:                  k.Topic,
		Balancer:               &kafka.Hash{}, // same key, same partition
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaReader(k Kafka) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.BrokerURLs(),
		GroupID:  k.GroupID,
		Topic:    k.Topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
}
