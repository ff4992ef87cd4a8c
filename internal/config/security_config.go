package config

import (
	"fmt"
	"time"
)

type SecurityConfig interface {
	GetLoginRatePerMinute() int
	GetSecureCookies() bool
}

type Security struct {
	LoginRatePerMinute int  `env:"LOGIN_RATE_PER_MINUTE, default=10"`
	SecureCookies      bool `env:"SECURE_COOKIES, default=false"`
}

var _ SecurityConfig = Security{}

func (s Security) GetLoginRatePerMinute() int {
	return s.LoginRatePerMinute
}

func (s Security) GetSecureCookies() bool {
	return s.SecureCookies
}

// StoreKind selects the durable session storage driver.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreSQLite StoreKind = "sqlite"
	StoreRedis  StoreKind = "redis"
)

type SessionConfig interface {
	GetSessionStore() StoreKind
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisDB() int
	GetSessionMaxAge() time.Duration
}

type Session struct {
	Store      string        `env:"SESSION_STORE, default=memory"`
	SQLitePath string        `env:"SESSION_SQLITE_PATH, default=./data/sessions.db"`
	RedisAddr  string        `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB    int           `env:"REDIS_DB, default=0"`
	MaxAge     time.Duration `env:"SESSION_MAX_AGE, default=12h"`
}

var _ SessionConfig = Session{}

func (s Session) validate() error {
	switch StoreKind(s.Store) {
	case StoreMemory, StoreSQLite, StoreRedis:
		return nil
	}
	return fmt.Errorf("unknown SESSION_STORE %q", s.Store)
}

func (s Session) GetSessionStore() StoreKind {
	return StoreKind(s.Store)
}

func (s Session) GetSQLitePath() string {
	return s.SQLitePath
}

func (s Session) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Session) GetRedisDB() int {
	return s.RedisDB
}

func (s Session) GetSessionMaxAge() time.Duration {
	return s.MaxAge
}
