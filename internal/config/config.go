// Package config reads binary configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Backend names a store implementation.
type Backend string

const (
	BackendDynamoDB Backend = "dynamodb"
	BackendRedis    Backend = "redis"
	BackendMemory   Backend = "memory"
)

// ErrInvalid is returned for unusable environment values.
var ErrInvalid = errors.New("config: invalid value")

// Service captures the settings shared by the Lambda binaries.
type Service struct {
	Backend           Backend
	TableName         string
	RedisURL          string
	RedisPrefix       string
	MaxUpdateAttempts int
	LogLevel          string
	AWSProfile        string
}

// FromEnv builds a Service config from environment variables so main stays lean.
//
//	STORE_BACKEND        dynamodb (default), redis or memory
//	TABLE_NAME           DynamoDB table, default "nameservice"
//	REDIS_URL            required for the redis backend
//	REDIS_PREFIX         key prefix, default "nameservice:"
//	MAX_UPDATE_ATTEMPTS  optimistic update attempts, default 3
//	LOG_LEVEL            debug, info, warn or error
//	AWS_PROFILE          optional shared config profile
func FromEnv() (Service, error) {
	cfg := Service{
		Backend:     Backend(getenv("STORE_BACKEND", string(BackendDynamoDB))),
		TableName:   getenv("TABLE_NAME", "nameservice"),
		RedisURL:    os.Getenv("REDIS_URL"),
		RedisPrefix: getenv("REDIS_PREFIX", "nameservice:"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		AWSProfile:  os.Getenv("AWS_PROFILE"),
	}

	attempts := getenv("MAX_UPDATE_ATTEMPTS", "3")
	n, err := strconv.Atoi(attempts)
	if err != nil || n < 1 {
		return Service{}, fmt.Errorf("%w: MAX_UPDATE_ATTEMPTS=%q", ErrInvalid, attempts)
	}
	cfg.MaxUpdateAttempts = n

	switch cfg.Backend {
	case BackendDynamoDB, BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Service{}, fmt.Errorf("%w: REDIS_URL is required for the redis backend", ErrInvalid)
		}
	default:
		return Service{}, fmt.Errorf("%w: STORE_BACKEND=%q", ErrInvalid, cfg.Backend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
