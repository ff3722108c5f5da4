package envconfig

import (
	"github.com/IBM/sarama"
	"github.com/caarlos0/env/v11"
)

type kafkaEnv struct {
	Brokers                 []string `env:"KAFKA_BROKERS,required"`
	VehicleCreatedTopicName string   `env:"VEHICLE_CREATED_TOPIC_NAME,required"`
	ConsumerGroupID         string   `env:"VEHICLE_CREATED_CONSUMER_GROUP_ID,required"`
}

type kafka struct {
	raw kafkaEnv
}

func NewKafkaConfig() (*kafka, error) {
	var raw kafkaEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &kafka{raw: raw}, nil
}

func (cfg *kafka) Brokers() []string           { return cfg.raw.Brokers }
func (cfg *kafka) VehicleCreatedTopic() string { return cfg.raw.VehicleCreatedTopicName }
func (cfg *kafka) ConsumerGroupID() string     { return cfg.raw.ConsumerGroupID }

func (cfg *kafka) ConsumerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V4_0_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	return config
}

// ProducerConfig enables idempotent acks=all delivery with retries so a
// broker hiccup never drops or duplicates an event.
func (cfg *kafka) ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V4_0_0_0
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Producer.Retry.Max = 5
	config.Net.MaxOpenRequests = 1

	return config
}
