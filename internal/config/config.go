// Package config resolves runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fixbid/fixbid/internal/db"
)

// Default server settings
const (
	// DefaultListenAddr is the default address the API server binds to
	DefaultListenAddr = ":8080"
)

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// ListenAddr returns the address the API server should bind to
func ListenAddr() string {
	return GetEnv("LISTEN_ADDR", DefaultListenAddr)
}

// DBOptions builds the database connection options from the environment.
// Unset variables fall back to the db package defaults.
func DBOptions() (db.Options, error) {
	opts := db.Options{
		Host:     GetEnv("DB_HOST", ""),
		User:     GetEnv("DB_USER", ""),
		Password: GetEnv("DB_PASSWORD", ""),
		DBName:   GetEnv("DB_NAME", ""),
	}

	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return db.Options{}, fmt.Errorf("invalid DB_PORT %q: %w", portStr, err)
		}
		opts.Port = port
	}

	if sslStr := os.Getenv("DB_SSL_ENABLED"); sslStr != "" {
		ssl, err := strconv.ParseBool(sslStr)
		if err != nil {
			return db.Options{}, fmt.Errorf("invalid DB_SSL_ENABLED %q: %w", sslStr, err)
		}
		opts.SSLEnabled = &ssl
	}

	return opts, nil
}
