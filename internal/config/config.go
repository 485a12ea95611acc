// Package config loads the server settings from the coltable.conf file in the
// Coltable home directory. A missing file is not an error: every setting has
// a usable default.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coltable/coltable-db/internal/coltable"
)

const configFileName = "coltable.conf"

// Supported storage engines.
const (
	EngineMemory = "memory"
	EnginePebble = "pebble"
)

type Config struct {
	// DataDir is where the pebble engine keeps its files.
	DataDir string
	// Engine selects the backing store, EngineMemory or EnginePebble.
	Engine string
	// RetentionMS is the write-retention window in milliseconds.
	RetentionMS int
	// FlushWorkers bounds the retention engine's flush pool.
	FlushWorkers int
	Debug        bool
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Engine != EngineMemory && c.Engine != EnginePebble {
		errGrp = append(errGrp, fmt.Errorf("unknown storage engine %q", c.Engine))
	}
	if c.RetentionMS <= 0 {
		errGrp = append(errGrp, fmt.Errorf("retention_ms must be positive, got %d", c.RetentionMS))
	}
	if c.FlushWorkers < 0 {
		errGrp = append(errGrp, fmt.Errorf("flush_workers must not be negative, got %d", c.FlushWorkers))
	}
	return errors.Join(errGrp...)
}

func defaults(dir string) *Config {
	return &Config{
		DataDir:      filepath.Join(dir, "data"),
		Engine:       EnginePebble,
		RetentionMS:  100,
		FlushWorkers: 4,
	}
}

// New loads the configuration from the Coltable home directory, falling back
// to defaults when the file does not exist.
func New() (*Config, error) {
	dir, err := coltable.GetColtableDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get Coltable directory: %w", err)
	}

	config := defaults(dir)

	file, err := os.Open(filepath.Join(dir, configFileName))
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := config.parse(file); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// parse reads key=value lines, skipping blanks and # comments. Unknown keys
// are ignored so older servers tolerate newer config files.
func (c *Config) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		var err error
		switch key {
		case "data_dir":
			c.DataDir = value
		case "engine":
			c.Engine = value
		case "retention_ms":
			c.RetentionMS, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retention_ms value: %w", err)
			}
		case "flush_workers":
			c.FlushWorkers, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid flush_workers value: %w", err)
			}
		case "debug":
			c.Debug = value == "true"
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}
