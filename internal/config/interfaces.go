package config

import (
	"time"

	"github.com/IBM/sarama"
)

type Server interface {
	Host() string
	Port() int
	Address() string
	ReadTimeout() time.Duration
	ShutdownTimeout() time.Duration
	DBReadTimeout() time.Duration
	DBWriteTimeout() time.Duration
}

type Logger interface {
	Level() string
	AsJSON() bool
}

type Database interface {
	MigrationDirectory() string
	DSN() string
}

type Kafka interface {
	Brokers() []string
	VehicleCreatedTopic() string
	ConsumerGroupID() string
	ConsumerConfig() *sarama.Config
	ProducerConfig() *sarama.Config
}

type Outbox interface {
	RelayInterval() time.Duration
	BatchSize() int
}
