package configuration

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type (
	Properties struct {
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

		Provider ProviderProperties   `envPrefix:"PROVIDER_"`
		Storage  StorageProperties    `envPrefix:"STORAGE_"`
		S3       S3Properties         `envPrefix:"S3_"`
		Server   HttpServerProperties `envPrefix:"HTTP_"`
	}

	// ProviderProperties names the hosted backend endpoint and the privileged
	// service credential used for every auth/storage/database call.
	ProviderProperties struct {
		URL         string        `env:"URL" validate:"required,url"`
		ServiceKey  string        `env:"SERVICE_KEY" validate:"required"`
		ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	}

	StorageProperties struct {
		// Backend selects how the image bucket is reached: "provider" talks to
		// the hosted storage REST API, "s3" to any S3-compatible endpoint.
		Backend       string `env:"BACKEND" envDefault:"provider" validate:"oneof=provider s3"`
		Bucket        string `env:"BUCKET" envDefault:"IMAGES"`
		DeleteObjects bool   `env:"DELETE_OBJECTS" envDefault:"false"`
	}

	S3Properties struct {
		Host      string `env:"HOST"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
	}

	HttpServerProperties struct {
		Port        string        `env:"PORT" envDefault:"3000"`
		StaticDir   string        `env:"STATIC_DIR" envDefault:"../front_end"`
		ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	}
)

func ReadProperties() *Properties {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	config := &Properties{}
	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("read config error: %w", err))
	}
	if err := validate(config); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}
	return config
}

func validate(config *Properties) error {
	v := validator.New()
	if err := v.Struct(config); err != nil {
		return err
	}
	if config.Storage.Backend == "s3" && config.S3.Host == "" {
		return fmt.Errorf("s3 backend selected but S3_HOST is empty")
	}
	return nil
}
