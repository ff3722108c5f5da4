package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/yasserh/Gestiongarrage/internal/config"
	"github.com/yasserh/Gestiongarrage/internal/repository/db"
	accrepo "github.com/yasserh/Gestiongarrage/internal/repository/accessory"
	grgrepo "github.com/yasserh/Gestiongarrage/internal/repository/garage"
	outboxrepo "github.com/yasserh/Gestiongarrage/internal/repository/outbox"
	vhcrepo "github.com/yasserh/Gestiongarrage/internal/repository/vehicle"
	accsvc "github.com/yasserh/Gestiongarrage/internal/service/accessory"
	vhcconsumer "github.com/yasserh/Gestiongarrage/internal/service/consumer/vehicle"
	grgsvc "github.com/yasserh/Gestiongarrage/internal/service/garage"
	vhcproducer "github.com/yasserh/Gestiongarrage/internal/service/producer/vehicle"
	"github.com/yasserh/Gestiongarrage/internal/service/relay"
	vhcsvc "github.com/yasserh/Gestiongarrage/internal/service/vehicle"
	thttp "github.com/yasserh/Gestiongarrage/internal/transport/http/v1"
	"github.com/yasserh/Gestiongarrage/platform/closer"
	"github.com/yasserh/Gestiongarrage/platform/db/migrator"
	"github.com/yasserh/Gestiongarrage/platform/kafka"
	"github.com/yasserh/Gestiongarrage/platform/kafka/consumer"
	"github.com/yasserh/Gestiongarrage/platform/kafka/middleware"
	"github.com/yasserh/Gestiongarrage/platform/kafka/producer"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

type GarageRepository interface {
	grgsvc.GarageRepository
	vhcsvc.GarageRepository
}

type VehicleRepository interface {
	grgsvc.VehicleRepository
	vhcsvc.VehicleRepository
	accsvc.VehicleRepository
}

type AccessoryRepository interface {
	grgsvc.AccessoryRepository
	vhcsvc.AccessoryRepository
	accsvc.AccessoryRepository
}

type OutboxRepository interface {
	vhcsvc.OutboxRepository
	relay.OutboxRepository
}

type VehicleConsumer interface {
	RunVehicleCreatedConsume(ctx context.Context) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type di struct {
	dbPool   *pgxpool.Pool
	dbClient *db.Client
	migrator *migrator.Migrator

	garageRepo    GarageRepository
	vehicleRepo   VehicleRepository
	accessoryRepo AccessoryRepository
	outboxRepo    OutboxRepository

	garageService    thttp.GarageService
	vehicleService   thttp.VehicleService
	accessoryService thttp.AccessoryService

	consumerGroup          sarama.ConsumerGroup
	vehicleCreatedConsumer kafka.Consumer
	vehicleConsumer        VehicleConsumer

	syncProducer           sarama.SyncProducer
	vehicleCreatedProducer kafka.Producer
	eventPublisher         relay.Publisher

	outboxRelay *relay.Relay

	router http.Handler
}

func NewDI() *di { return &di{} }

func (d *di) DBPool(ctx context.Context) *pgxpool.Pool {
	if d.dbPool == nil {
		pool, err := pgxpool.New(ctx, config.C().Postgres.DSN())
		if err != nil {
			panic(fmt.Sprintf("failed to create pg pool: %v\n", err))
		}

		closer.AddNamed("PGX Pool",
			func(ctx context.Context) error {
				pool.Close()
				return nil
			})

		if err := pool.Ping(ctx); err != nil {
			panic(fmt.Sprintf("failed to ping db: %v\n", err))
		}

		d.dbPool = pool
	}

	return d.dbPool
}

func (d *di) DBClient(ctx context.Context) *db.Client {
	if d.dbClient == nil {
		d.dbClient = db.NewClient(d.DBPool(ctx))
	}

	return d.dbClient
}

func (d *di) Migrator(ctx context.Context) *migrator.Migrator {
	if d.migrator == nil {
		d.migrator = migrator.NewMigrator(
			stdlib.OpenDBFromPool(d.DBPool(ctx)),
			config.C().Postgres.MigrationDirectory(),
		)

		closer.AddNamed("Migrator",
			func(ctx context.Context) error {
				return d.migrator.Close()
			})
	}

	return d.migrator
}

func (d *di) GarageRepository(ctx context.Context) GarageRepository {
	if d.garageRepo == nil {
		d.garageRepo = grgrepo.NewGarageRepository(d.DBClient(ctx))
	}

	return d.garageRepo
}

func (d *di) VehicleRepository(ctx context.Context) VehicleRepository {
	if d.vehicleRepo == nil {
		d.vehicleRepo = vhcrepo.NewVehicleRepository(d.DBClient(ctx))
	}

	return d.vehicleRepo
}

func (d *di) AccessoryRepository(ctx context.Context) AccessoryRepository {
	if d.accessoryRepo == nil {
		d.accessoryRepo = accrepo.NewAccessoryRepository(d.DBClient(ctx))
	}

	return d.accessoryRepo
}

func (d *di) OutboxRepository(ctx context.Context) OutboxRepository {
	if d.outboxRepo == nil {
		d.outboxRepo = outboxrepo.NewOutboxRepository(d.DBClient(ctx))
	}

	return d.outboxRepo
}

func (d *di) GarageService(ctx context.Context) thttp.GarageService {
	if d.garageService == nil {
		d.garageService = grgsvc.NewGarageService(
			d.GarageRepository(ctx),
			d.VehicleRepository(ctx),
			d.AccessoryRepository(ctx),
			d.DBClient(ctx),
			config.C().Server.DBReadTimeout(),
			config.C().Server.DBWriteTimeout(),
		)
	}

	return d.garageService
}

func (d *di) VehicleService(ctx context.Context) thttp.VehicleService {
	if d.vehicleService == nil {
		d.vehicleService = vhcsvc.NewVehicleService(
			d.VehicleRepository(ctx),
			d.GarageRepository(ctx),
			d.AccessoryRepository(ctx),
			d.OutboxRepository(ctx),
			d.DBClient(ctx),
			systemClock{},
			config.C().Kafka.VehicleCreatedTopic(),
			config.C().Server.DBReadTimeout(),
			config.C().Server.DBWriteTimeout(),
		)
	}

	return d.vehicleService
}

func (d *di) AccessoryService(ctx context.Context) thttp.AccessoryService {
	if d.accessoryService == nil {
		d.accessoryService = accsvc.NewAccessoryService(
			d.AccessoryRepository(ctx),
			d.VehicleRepository(ctx),
			config.C().Server.DBReadTimeout(),
			config.C().Server.DBWriteTimeout(),
		)
	}

	return d.accessoryService
}

func (d *di) ConsumerGroup(ctx context.Context) sarama.ConsumerGroup {
	if d.consumerGroup == nil {
		cfg := config.C()

		consumerGroup, err := sarama.NewConsumerGroup(
			cfg.Kafka.Brokers(),
			cfg.Kafka.ConsumerGroupID(),
			cfg.Kafka.ConsumerConfig(),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create consumer group: %s\n", err.Error()))
		}
		closer.AddNamed("Kafka consumer group", func(ctx context.Context) error {
			return d.consumerGroup.Close()
		})

		d.consumerGroup = consumerGroup
	}

	return d.consumerGroup
}

func (d *di) VehicleCreatedConsumer(ctx context.Context) kafka.Consumer {
	if d.vehicleCreatedConsumer == nil {
		d.vehicleCreatedConsumer = consumer.NewConsumer(
			d.ConsumerGroup(ctx),
			[]string{
				config.C().Kafka.VehicleCreatedTopic(),
			},
			logger.L(),
			middleware.Recovery(logger.L()),
			middleware.Logging(logger.L()),
		)
	}

	return d.vehicleCreatedConsumer
}

func (d *di) VehicleConsumer(ctx context.Context) VehicleConsumer {
	if d.vehicleConsumer == nil {
		d.vehicleConsumer = vhcconsumer.NewVehicleConsumer(
			d.VehicleCreatedConsumer(ctx),
			vhcconsumer.LogHandler{},
		)
	}

	return d.vehicleConsumer
}

func (d *di) SyncProducer(ctx context.Context) sarama.SyncProducer {
	if d.syncProducer == nil {
		cfg := config.C()

		p, err := sarama.NewSyncProducer(
			cfg.Kafka.Brokers(),
			cfg.Kafka.ProducerConfig(),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create sync producer: %s\n", err.Error()))
		}
		closer.AddNamed("Kafka sync producer", func(ctx context.Context) error {
			return p.Close()
		})

		d.syncProducer = p
	}

	return d.syncProducer
}

func (d *di) VehicleCreatedProducer(ctx context.Context) kafka.Producer {
	if d.vehicleCreatedProducer == nil {
		d.vehicleCreatedProducer = producer.NewProducer(
			d.SyncProducer(ctx),
			config.C().Kafka.VehicleCreatedTopic(),
			logger.L(),
		)
	}

	return d.vehicleCreatedProducer
}

func (d *di) EventPublisher(ctx context.Context) relay.Publisher {
	if d.eventPublisher == nil {
		d.eventPublisher = vhcproducer.NewVehicleProducer(
			d.VehicleCreatedProducer(ctx),
		)
	}

	return d.eventPublisher
}

func (d *di) OutboxRelay(ctx context.Context) *relay.Relay {
	if d.outboxRelay == nil {
		d.outboxRelay = relay.New(
			d.OutboxRepository(ctx),
			d.EventPublisher(ctx),
			d.DBClient(ctx),
			config.C().Outbox.RelayInterval(),
			config.C().Outbox.BatchSize(),
		)
	}

	return d.outboxRelay
}

func (d *di) Router(ctx context.Context) http.Handler {
	if d.router == nil {
		d.router = thttp.NewRouter(
			d.GarageService(ctx),
			d.VehicleService(ctx),
			d.AccessoryService(ctx),
		)
	}

	return d.router
}
