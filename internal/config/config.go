// Package config loads process configuration from the environment, with an
// optional .env file in the working directory.
package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Mongo struct {
	URI      string `envconfig:"MONGODB_URI" required:"true"`
	Database string `envconfig:"MONGODB_DB" default:"afterschool"`
}

type Telemetry struct {
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"0.1.0"`
}

type Kafka struct {
	Brokers     []string `envconfig:"KAFKA_BROKERS"`
	OrdersTopic string   `envconfig:"ORDERS_TOPIC" default:"order.created"`
}

type API struct {
	Mongo
	Telemetry
	Kafka
	Port      string `envconfig:"PORT" default:"3000"`
	ImagesDir string `envconfig:"IMAGES_DIR" default:"./images"`
}

type Seed struct {
	Mongo
}

type Migrate struct {
	Mongo
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
}

type Notifier struct {
	Kafka
	Telemetry
	EmailServiceURL string `envconfig:"EMAIL_SERVICE_URL" required:"true"`
	GroupID         string `envconfig:"NOTIFIER_GROUP_ID" default:"booking-notifier"`
}

type Mailer struct {
	Port string `envconfig:"MAILER_PORT" default:"8084"`
}

// Load reads a .env file if one exists and then fills cfg from the
// environment. Variables already set in the environment take precedence.
func Load[T any]() (T, error) {
	var cfg T

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	err := envconfig.Process("", &cfg)
	return cfg, err
}
