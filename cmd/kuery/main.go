package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/controlplane-com/kuery/pkg/filters/parser"
	"github.com/google/uuid"
)

const version = "1.0.0"

func main() {
	// Setup structured logging with configurable level
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	logger := slog.Default().With("run", uuid.New().String())

	if err := newRootCmd(logger).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "kuery: %v\n", err)
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
