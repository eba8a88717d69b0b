package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the problem section.
const (
	EnvHistories = "MCT_HISTORIES"
	EnvBatchSize = "MCT_BATCH_SIZE"
	EnvWorkers   = "MCT_WORKERS"
	EnvSeed      = "MCT_SEED"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}

	return nil
}

// ApplyEnv overrides the run parameters with the MCT_* variables that are
// set.
func (p *Problem) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvHistories); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvHistories, v)
		}

		p.Problem.Histories = n
	}

	if v, ok := os.LookupEnv(EnvBatchSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvBatchSize, v)
		}

		p.Problem.BatchSize = n
	}

	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvWorkers, v)
		}

		p.Problem.Workers = n
	}

	if v, ok := os.LookupEnv(EnvSeed); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvSeed, v)
		}

		p.Problem.Seed = n
	}

	return nil
}
