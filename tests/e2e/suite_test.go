//go:build integration

package e2e

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	tc "github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yasserh/Gestiongarrage/internal/converter"
	"github.com/yasserh/Gestiongarrage/internal/model"
	accrepo "github.com/yasserh/Gestiongarrage/internal/repository/accessory"
	"github.com/yasserh/Gestiongarrage/internal/repository/db"
	grgrepo "github.com/yasserh/Gestiongarrage/internal/repository/garage"
	outboxrepo "github.com/yasserh/Gestiongarrage/internal/repository/outbox"
	vhcrepo "github.com/yasserh/Gestiongarrage/internal/repository/vehicle"
	accsvc "github.com/yasserh/Gestiongarrage/internal/service/accessory"
	grgsvc "github.com/yasserh/Gestiongarrage/internal/service/garage"
	vhcproducer "github.com/yasserh/Gestiongarrage/internal/service/producer/vehicle"
	"github.com/yasserh/Gestiongarrage/internal/service/relay"
	vhcsvc "github.com/yasserh/Gestiongarrage/internal/service/vehicle"
	"github.com/yasserh/Gestiongarrage/platform/db/migrator"
	"github.com/yasserh/Gestiongarrage/platform/kafka"
	"github.com/yasserh/Gestiongarrage/platform/kafka/consumer"
	"github.com/yasserh/Gestiongarrage/platform/kafka/middleware"
	"github.com/yasserh/Gestiongarrage/platform/kafka/producer"
	"github.com/yasserh/Gestiongarrage/platform/logger"
)

const (
	pgImage = "postgres:17.0-alpine3.20"

	pgUser       = "garage-service-user"
	pgPass       = "12CXZ43_U_w"
	pgDB         = "garage-db"
	migrationDir = "../../migrations"

	kafkaImage = "confluentinc/cp-kafka:7.6.1"

	topicVehicleCreated = "vehicle.created"
	consumerGroupID     = "garage-group-vehicle-created"
)

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

var (
	ctx context.Context

	pgC    *postgres.PostgresContainer
	pool   *pgxpool.Pool
	client *db.Client

	kafkaC       tc.Container
	kafkaBrokers []string

	garageSvc    grgSvcAPI
	vehicleSvc   vhcSvcAPI
	accessorySvc accSvcAPI

	outboxRelay *relay.Relay
	relayCancel context.CancelFunc
)

type grgSvcAPI interface {
	Create(ctx context.Context, g *model.Garage) (*model.Garage, error)
	GarageByID(ctx context.Context, id int64) (*model.Garage, error)
	Delete(ctx context.Context, id int64) error
	SearchByCity(ctx context.Context, city string, page model.PageRequest) (model.Page[model.Garage], error)
	Full(ctx context.Context, page model.PageRequest) (model.Page[model.Garage], error)
	CountWithVehicles(ctx context.Context) (int64, error)
}

type vhcSvcAPI interface {
	AddToGarage(ctx context.Context, garageID int64, v *model.Vehicle) (*model.Vehicle, error)
	VehicleByID(ctx context.Context, id int64) (*model.Vehicle, error)
	ListByGarage(ctx context.Context, garageID int64, page model.PageRequest) (model.Page[model.Vehicle], error)
	EcoFriendly(ctx context.Context, page model.PageRequest) (model.Page[model.Vehicle], error)
}

type accSvcAPI interface {
	AddToVehicle(ctx context.Context, vehicleID int64, a *model.Accessory) (*model.Accessory, error)
	TotalPriceByVehicle(ctx context.Context, vehicleID int64) (decimal.Decimal, error)
}

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Garage Service Integration Suite")
}

var _ = BeforeSuite(func() {
	ctx = context.Background()

	By("starting postgres container")
	var err error
	logger.SetNopLogger()
	pgC, err = postgres.Run(ctx,
		pgImage,
		postgres.WithDatabase(pgDB),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPass),
		tc.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())

	By("building postgres connection string")
	dbURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	By("creating pgx pool")
	pool, err = pgxpool.New(ctx, dbURL)
	Expect(err).NotTo(HaveOccurred())

	Eventually(func(g Gomega) {
		err := pool.Ping(ctx)
		g.Expect(err).NotTo(HaveOccurred())
	}).WithTimeout(10 * time.Second).WithPolling(200 * time.Millisecond).Should(Succeed())

	migrator := migrator.NewMigrator(
		stdlib.OpenDBFromPool(pool),
		migrationDir,
	)

	By("running migrations")
	err = migrator.Up()
	Expect(err).NotTo(HaveOccurred())
	defer migrator.Close()

	By("starting kafka container (cp-kafka)")
	kafkaC, kafkaBrokers, err = runKafka(ctx)
	Expect(err).NotTo(HaveOccurred())

	By("creating kafka topic")
	Expect(createTopics(ctx, kafkaBrokers, topicVehicleCreated)).To(Succeed())

	By("creating repositories")
	client = db.NewClient(pool)
	garageRepo := grgrepo.NewGarageRepository(client)
	vehicleRepo := vhcrepo.NewVehicleRepository(client)
	accessoryRepo := accrepo.NewAccessoryRepository(client)
	outboxRepo := outboxrepo.NewOutboxRepository(client)

	By("creating services")
	garageSvc = grgsvc.NewGarageService(garageRepo, vehicleRepo, accessoryRepo, client, 2*time.Second, 2*time.Second)
	vehicleSvc = vhcsvc.NewVehicleService(
		vehicleRepo, garageRepo, accessoryRepo, outboxRepo, client,
		wallClock{}, topicVehicleCreated, 2*time.Second, 10*time.Second,
	)
	accessorySvc = accsvc.NewAccessoryService(accessoryRepo, vehicleRepo, 2*time.Second, 2*time.Second)

	By("starting the outbox relay in background")
	producerConfig := sarama.NewConfig()
	producerConfig.Version = sarama.V4_0_0_0
	producerConfig.Producer.Return.Successes = true
	producerConfig.Producer.RequiredAcks = sarama.WaitForAll

	p, err := sarama.NewSyncProducer(kafkaBrokers, producerConfig)
	Expect(err).NotTo(HaveOccurred())

	publisher := vhcproducer.NewVehicleProducer(producer.NewProducer(p, topicVehicleCreated, logger.L()))
	outboxRelay = relay.New(outboxRepo, publisher, client, 100*time.Millisecond, 100)

	var relayCtx context.Context
	relayCtx, relayCancel = context.WithCancel(ctx)
	go func() {
		_ = outboxRelay.Run(relayCtx)
	}()
})

var _ = AfterSuite(func() {
	if relayCancel != nil {
		relayCancel()
	}
	if pool != nil {
		pool.Close()
	}
	if pgC != nil {
		_ = pgC.Terminate(ctx)
	}
	mustTerminate(ctx, kafkaC)
})

var _ = BeforeEach(func() {
	By("cleaning tables")
	_, err := pool.Exec(ctx, "TRUNCATE TABLE outbox_events, accessories, garage_opening_hours, vehicles, garages RESTART IDENTITY CASCADE")
	Expect(err).NotTo(HaveOccurred())
})

func newGarage() *model.Garage {
	return &model.Garage{
		Name:      "Garage du Centre",
		Address:   "12 rue de la République, 69002 Lyon",
		Telephone: "+33472000000",
		Email:     fmt.Sprintf("contact-%s@garage.fr", uuid.NewString()[:8]),
		OpeningHours: map[model.DayOfWeek]string{
			model.Monday: "08:00-12:00,14:00-18:00",
		},
	}
}

func newVehicle() *model.Vehicle {
	return &model.Vehicle{
		Brand:             "Renault",
		Model:             "Clio",
		YearOfManufacture: 2021,
		FuelType:          model.FuelEssence,
	}
}

var _ = Describe("Garage aggregate", func() {
	Context("Create + GarageByID", func() {
		It("persists the garage with its opening hours", func() {
			g, err := garageSvc.Create(ctx, newGarage())
			Expect(err).NotTo(HaveOccurred())
			Expect(g.ID).NotTo(BeZero())

			got, err := garageSvc.GarageByID(ctx, g.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal(g.Name))
			Expect(got.OpeningHours).To(HaveKeyWithValue(model.Monday, "08:00-12:00,14:00-18:00"))
			Expect(got.VehicleCount).To(BeZero())
		})

		It("rejects a duplicate email regardless of case", func() {
			g := newGarage()
			_, err := garageSvc.Create(ctx, g)
			Expect(err).NotTo(HaveOccurred())

			dup := newGarage()
			dup.Email = "CONTACT-" + g.Email[len("contact-"):]
			_, err = garageSvc.Create(ctx, dup)
			Expect(err).To(MatchError(model.ErrDuplicateEmail))
		})

		It("returns ErrGarageNotFound when missing", func() {
			_, err := garageSvc.GarageByID(ctx, 424242)
			Expect(err).To(MatchError(model.ErrGarageNotFound))
		})
	})

	Context("Delete", func() {
		It("removes the garage with its vehicles and accessories", func() {
			g, err := garageSvc.Create(ctx, newGarage())
			Expect(err).NotTo(HaveOccurred())

			v, err := vehicleSvc.AddToGarage(ctx, g.ID, newVehicle())
			Expect(err).NotTo(HaveOccurred())

			_, err = accessorySvc.AddToVehicle(ctx, v.ID, &model.Accessory{
				Name:        "GPS intégré",
				Description: "Navigation avec cartes Europe",
				Price:       decimal.NewFromFloat(299.99),
				Type:        model.AccessoryElectronique,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(garageSvc.Delete(ctx, g.ID)).To(Succeed())

			var vehicles, accessories int
			Expect(pool.QueryRow(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&vehicles)).To(Succeed())
			Expect(pool.QueryRow(ctx, "SELECT COUNT(*) FROM accessories").Scan(&accessories)).To(Succeed())
			Expect(vehicles).To(BeZero())
			Expect(accessories).To(BeZero())
		})
	})

	Context("Search", func() {
		It("finds garages by city inside the address", func() {
			_, err := garageSvc.Create(ctx, newGarage())
			Expect(err).NotTo(HaveOccurred())

			page, err := garageSvc.SearchByCity(ctx, "lyon", model.NewPageRequest(0, 20))
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalElements).To(Equal(int64(1)))
		})
	})
})

var _ = Describe("Vehicle quota", func() {
	It("accepts the 50th vehicle and rejects the 51st", func() {
		g, err := garageSvc.Create(ctx, newGarage())
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < model.MaxVehiclesPerGarage; i++ {
			_, err := vehicleSvc.AddToGarage(ctx, g.ID, newVehicle())
			Expect(err).NotTo(HaveOccurred())
		}

		_, err = vehicleSvc.AddToGarage(ctx, g.ID, newVehicle())
		Expect(err).To(MatchError(model.ErrQuotaExceeded))

		got, err := garageSvc.GarageByID(ctx, g.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.VehicleCount).To(Equal(model.MaxVehiclesPerGarage))
		Expect(got.IsFull()).To(BeTrue())

		full, err := garageSvc.Full(ctx, model.NewPageRequest(0, 20))
		Expect(err).NotTo(HaveOccurred())
		Expect(full.TotalElements).To(Equal(int64(1)))
	})

	It("rejects a duplicate vin", func() {
		g, err := garageSvc.Create(ctx, newGarage())
		Expect(err).NotTo(HaveOccurred())

		vin := "1HGBH41JXMN109186"
		v := newVehicle()
		v.Vin = &vin
		_, err = vehicleSvc.AddToGarage(ctx, g.ID, v)
		Expect(err).NotTo(HaveOccurred())

		again := newVehicle()
		again.Vin = &vin
		_, err = vehicleSvc.AddToGarage(ctx, g.ID, again)
		Expect(err).To(MatchError(model.ErrDuplicateVin))
	})
})

var _ = Describe("Vehicle created events", func() {
	It("relays the outbox row to kafka and the consumer deduplicates", func() {
		g, err := garageSvc.Create(ctx, newGarage())
		Expect(err).NotTo(HaveOccurred())

		v, err := vehicleSvc.AddToGarage(ctx, g.ID, newVehicle())
		Expect(err).NotTo(HaveOccurred())

		By("waiting for the relay to mark the event published")
		Eventually(func(g Gomega) {
			var remaining int
			err := pool.QueryRow(ctx,
				"SELECT COUNT(*) FROM outbox_events WHERE published_at IS NULL",
			).Scan(&remaining)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(remaining).To(BeZero())
		}).WithTimeout(15 * time.Second).WithPolling(200 * time.Millisecond).Should(Succeed())

		By("consuming the event from the topic")
		received := make(chan model.VehicleCreated, 1)

		consumerConfig := sarama.NewConfig()
		consumerConfig.Version = sarama.V4_0_0_0
		consumerConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
		consumerConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

		group, err := sarama.NewConsumerGroup(kafkaBrokers, consumerGroupID, consumerConfig)
		Expect(err).NotTo(HaveOccurred())
		defer group.Close()

		c := consumer.NewConsumer(
			group,
			[]string{topicVehicleCreated},
			logger.L(),
			middleware.Recovery(logger.L()),
			middleware.Logging(logger.L()),
		)

		consumeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		go func() {
			_ = c.Consume(consumeCtx, func(ctx context.Context, msg kafka.Message) error {
				event, err := converter.DecodeVehicleCreated(msg.Value)
				if err != nil {
					return err
				}
				select {
				case received <- event:
				default:
				}
				return nil
			})
		}()

		var event model.VehicleCreated
		Eventually(received).WithTimeout(15 * time.Second).Should(Receive(&event))
		Expect(event.VehicleID).To(Equal(v.ID))
		Expect(event.GarageID).To(Equal(g.ID))
		Expect(event.GarageName).To(Equal(g.Name))
		Expect(event.EventID).NotTo(Equal(uuid.Nil))
	})
})

var _ = Describe("Accessories", func() {
	It("sums prices per vehicle", func() {
		g, err := garageSvc.Create(ctx, newGarage())
		Expect(err).NotTo(HaveOccurred())

		v, err := vehicleSvc.AddToGarage(ctx, g.ID, newVehicle())
		Expect(err).NotTo(HaveOccurred())

		for _, price := range []string{"100.50", "49.49"} {
			_, err := accessorySvc.AddToVehicle(ctx, v.ID, &model.Accessory{
				Name:        "Tapis de sol",
				Description: "Jeu de quatre tapis en caoutchouc",
				Price:       decimal.RequireFromString(price),
				Type:        model.AccessoryInterieur,
			})
			Expect(err).NotTo(HaveOccurred())
		}

		total, err := accessorySvc.TotalPriceByVehicle(ctx, v.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(total.Equal(decimal.RequireFromString("149.99"))).To(BeTrue())
	})
})

func runKafka(ctx context.Context) (tc.Container, []string, error) {
	c, err := kafkaTc.Run(ctx,
		kafkaImage,
		kafkaTc.WithClusterID("Mk3OEYBSD34fcwNTJENDM2Qk"),
	)
	if err != nil {
		return nil, []string{}, err
	}

	bootstrap, err := c.Brokers(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, []string{}, err
	}

	return c, bootstrap, nil
}

func mustTerminate(ctx context.Context, c tc.Container) {
	if c != nil {
		_ = c.Terminate(ctx)
	}
}

func createTopics(_ context.Context, brokers []string, topics ...string) error {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V4_0_0_0
	cfg.Producer.Return.Successes = true
	cfg.Admin.Timeout = 10 * time.Second

	admin, err := sarama.NewClusterAdmin(brokers, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()

	for _, t := range topics {
		err := admin.CreateTopic(t, &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		}, false)
		if err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
			return err
		}
	}
	return nil
}
