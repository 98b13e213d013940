package config

import "time"

// DefaultBootstrapPassword is the well known password of the seeded admin.
// Operators are expected to rotate it.
const DefaultBootstrapPassword = "password"

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"24h"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"go-inventory-ledger"`

	BootstrapUsername string `env:"BOOTSTRAP_ADMIN_USERNAME" envDefault:"admin"`
	BootstrapPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD" envDefault:"password"`

	// AllowSignup exposes self registration. New accounts always get the employee role.
	AllowSignup bool `env:"AUTH_ALLOW_SIGNUP" envDefault:"false"`
}
