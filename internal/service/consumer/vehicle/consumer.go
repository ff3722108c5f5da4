package vhcconsumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yasserh/Gestiongarrage/internal/converter"
	"github.com/yasserh/Gestiongarrage/internal/model"
	"github.com/yasserh/Gestiongarrage/platform/kafka"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

// EventHandler receives each VehicleCreated event exactly once per process.
// Downstream reactions (notifications, read-model updates) implement it.
type EventHandler interface {
	HandleVehicleCreated(ctx context.Context, event model.VehicleCreated) error
}

// LogHandler is the default reaction, it only records the registration.
type LogHandler struct{}

func (LogHandler) HandleVehicleCreated(ctx context.Context, event model.VehicleCreated) error {
	logger.Info(ctx, "vehicle registered",
		logger.Int64("vehicle_id", event.VehicleID),
		logger.String("brand", event.Brand),
		logger.String("model", event.Model),
		logger.String("fuel_type", string(event.FuelType)),
		logger.Int64("garage_id", event.GarageID),
		logger.String("garage_name", event.GarageName),
		logger.String("event_id", event.EventID.String()),
	)
	return nil
}

type service struct {
	consumer kafka.Consumer
	handler  EventHandler

	mu   sync.Mutex
	seen map[uuid.UUID]struct{}
}

func NewVehicleConsumer(consumer kafka.Consumer, handler EventHandler) *service {
	if handler == nil {
		handler = LogHandler{}
	}
	return &service{
		consumer: consumer,
		handler:  handler,
		seen:     make(map[uuid.UUID]struct{}),
	}
}

func (s *service) RunVehicleCreatedConsume(ctx context.Context) error {
	logger.Info(ctx, "Starting vehicle created consumer")

	if err := s.consumer.Consume(ctx, s.vehicleCreatedHandler); err != nil {
		logger.Error(ctx, "Consume from vehicle.created topic error", logger.ErrorF(err))
		return err
	}

	return nil
}

func (s *service) vehicleCreatedHandler(ctx context.Context, msg kafka.Message) error {
	event, err := converter.DecodeVehicleCreated(msg.Value)
	if err != nil {
		logger.Error(ctx, "Failed to decode VehicleCreated", logger.ErrorF(err))
		return fmt.Errorf("converter vehicle_created_to_model error: %w", err)
	}

	// The relay is at-least-once, so replays of the same event id are
	// skipped here.
	if s.alreadySeen(event.EventID) {
		logger.Debug(ctx, "duplicate vehicle created event skipped",
			logger.String("event_id", event.EventID.String()),
		)
		return nil
	}

	return s.handler.HandleVehicleCreated(ctx, event)
}

// The seen set is process-local and unbounded. Event ids only accumulate
// while the process lives, a restart resets the window and replays older
// still-unconsumed offsets through the handler again, which stays safe
// because handlers are expected to be idempotent.
// TODO: move dedup to a processed_events table once a handler with real
// side effects lands.
func (s *service) alreadySeen(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = struct{}{}
	return false
}
