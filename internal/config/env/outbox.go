package envconfig

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type outboxEnv struct {
	RelayInterval time.Duration `env:"OUTBOX_RELAY_INTERVAL" envDefault:"1s"`
	BatchSize     int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
}

type outbox struct {
	raw outboxEnv
}

func NewOutboxConfig() (*outbox, error) {
	var raw outboxEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &outbox{raw: raw}, nil
}

func (cfg *outbox) RelayInterval() time.Duration { return cfg.raw.RelayInterval }
func (cfg *outbox) BatchSize() int               { return cfg.raw.BatchSize }
