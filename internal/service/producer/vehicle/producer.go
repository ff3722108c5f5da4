package vhcproducer

import (
	"context"
	"fmt"

	"github.com/yasserh/Gestiongarrage/platform/kafka"
)

type service struct {
	producer kafka.Producer
}

func NewVehicleProducer(producer kafka.Producer) *service {
	return &service{producer: producer}
}

// Publish ships an already-encoded event payload keyed by vehicle id.
func (s *service) Publish(ctx context.Context, key string, payload []byte) error {
	if err := s.producer.Send(ctx, []byte(key), payload); err != nil {
		return fmt.Errorf("producer to vehicle.created topic error: %w", err)
	}

	return nil
}
