package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig — параметры консьюмера событий каталога.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // first|last, регистр и пробелы не важны; иначе last

	ProcessTimeout time.Duration // таймаут обработки одного события
	RetryInitial   time.Duration // начальная пауза после ошибки FetchMessage
	RetryMax       time.Duration // потолок экспоненциального backoff
}

// ReaderConfig — конфигурация kafka.Reader с ручным коммитом оффсетов.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		CommitInterval: 0,
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}
