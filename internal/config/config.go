// Package config loads settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the console.
type Config struct {
	// APIURL is the base of the REST API, including the /api prefix.
	APIURL string `conf:"default:http://127.0.0.1:5000/api,env:STOCK_API_URL"`
	// StateDir holds the credential database and the default log file.
	StateDir string `conf:"env:STOCK_STATE_DIR"`
	LogFile  string `conf:"env:STOCK_LOG_FILE"`
	LogLevel string `conf:"default:info,env:STOCK_LOG_LEVEL"`
	// RequestTimeout bounds every API call. Zero means no timeout.
	RequestTimeout time.Duration `conf:"default:0s,env:STOCK_REQUEST_TIMEOUT"`
}

// Load reads configuration from STOCK_* environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()

	// Flags belong to cobra; conf only reads defaults and the environment here.
	args := os.Args
	os.Args = args[:1]
	_, err := conf.Parse("", &cfg)
	os.Args = args
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return errors.New("config: empty API URL")
	}
	if strings.TrimSpace(c.StateDir) == "" {
		dir, err := DefaultStateDir()
		if err != nil {
			return err
		}
		c.StateDir = dir
	}
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = filepath.Join(c.StateDir, "stock.log")
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: negative request timeout")
	}
	return nil
}

// Override applies non-empty flag values on top of the loaded config.
func (c *Config) Override(apiURL, stateDir string) error {
	if v := strings.TrimSpace(apiURL); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(stateDir); v != "" {
		// Keep an explicit log file; move a derived one along with the state dir.
		if c.LogFile == filepath.Join(c.StateDir, "stock.log") {
			c.LogFile = ""
		}
		c.StateDir = v
	}
	return c.resolve()
}

// DefaultStateDir is ~/.stock.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stock"), nil
}
