package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	CorsConfig
	OIDCConfig
	SecurityConfig
	FeatureConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// mainConfig is populated from the environment once at startup.
type mainConfig struct {
	EnvVars
	API
	Session
	Cors
	OIDC
	Security
	Features
}

var _ Config = mainConfig{}

// New reads the configuration from the process environment.
func New(ctx context.Context) (Config, error) {
	return NewFromLookuper(ctx, envconfig.OsLookuper())
}

// NewFromLookuper reads the configuration from the given lookuper. Tests use envconfig.MapLookuper.
func NewFromLookuper(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var c mainConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &c,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("[config New] failed to load configuration: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}
	return c, nil
}
