package config

import "time"

type HTTP struct {
	Port            int           `env:"PORT" envDefault:"3000"`
	AppName         string        `env:"APP_NAME" envDefault:"Inventory Ledger"`
	AllowOrigins    string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
