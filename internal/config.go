package internal

import "time"

// Config is the reference backend's environment surface.
type Config struct {
	LogLevel       string `env:"LOG_LEVEL,required=true"`
	Host           string `env:"HOST,default=localhost"`
	Port           int    `env:"PORT,default=8080"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	JWTSecret      string `env:"JWT_SECRET,required=true"`

	// PageLimitMax is the server-side clamp on history page sizes.
	PageLimitMax int `env:"PAGE_LIMIT_MAX,default=20"`
	// MaxRetries caps delivery re-attempts per message.
	MaxRetries int `env:"MAX_RETRIES,default=5"`

	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT,default=10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`

	// SeedDemo loads a demo chat and feed so the viewer has something
	// to display on a fresh database.
	SeedDemo bool `env:"SEED_DEMO,default=false"`
}
