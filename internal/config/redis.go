package config

import "time"

// Redis backs idempotent sale/purchase submissions. Leaving Addr empty disables it.
type Redis struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB" envDefault:"0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}
