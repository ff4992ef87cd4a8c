package config

import (
	"strings"
	"time"
)

type EnvVars struct {
	Port     string `env:"PORT, default=8080"`
	AppName  string `env:"APP_NAME, default=EV Service Center"`
	Env      string `env:"ENV, default=DEV"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) IsDev() bool {
	return e.GetEnv() == "DEV"
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetPageSize() int
}

// API describes the external service-center backend.
type API struct {
	BaseURL  string        `env:"API_BASE_URL, default=http://localhost:9090"`
	Timeout  time.Duration `env:"API_TIMEOUT, default=10s"`
	PageSize int           `env:"PAGE_SIZE, default=20"`
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return strings.TrimSuffix(a.BaseURL, "/")
}

func (a API) GetAPITimeout() time.Duration {
	return a.Timeout
}

func (a API) GetPageSize() int {
	if a.PageSize <= 0 {
		return 20
	}
	return a.PageSize
}

type FeatureConfig interface {
	ReportsEnabled() bool
	MetricsEnabled() bool
}

type Features struct {
	Reports bool `env:"FEATURE_REPORTS, default=true"`
	Metrics bool `env:"FEATURE_METRICS, default=true"`
}

var _ FeatureConfig = Features{}

func (f Features) ReportsEnabled() bool { return f.Reports }
func (f Features) MetricsEnabled() bool { return f.Metrics }
