package env

import (
	"os"
	"strings"

	"zodiac_backend/internal/config"
)

const (
	httpAddressEnvName = "HTTP_ADDRESS"
	corsOriginsEnvName = "CORS_ALLOWED_ORIGINS"
	appEnvName         = "APP_ENV"

	defaultHTTPAddress = ":8080"
)

type httpConfig struct {
	address string
	origins []string
}

func NewHTTPConfig() (config.HTTPConfig, error) {
	address := os.Getenv(httpAddressEnvName)
	if len(address) == 0 {
		address = defaultHTTPAddress
	}
	// CORS_ALLOWED_ORIGINS Список через запятую, пусто = "*"
	origins := []string{"*"}
	if raw := os.Getenv(corsOriginsEnvName); len(raw) > 0 {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &httpConfig{address: address, origins: origins}, nil
}

func (cfg *httpConfig) Address() string {
	return cfg.address
}

func (cfg *httpConfig) AllowedOrigins() []string {
	return cfg.origins
}

type appConfig struct {
	env string
}

func NewAppConfig() config.AppConfig {
	return &appConfig{env: os.Getenv(appEnvName)}
}

func (cfg *appConfig) IsProduction() bool {
	return cfg.env == "production" || cfg.env == "prod"
}
