// internal/config/config.go

// Package config resolves server configuration. Precedence: command-line
// flags, then environment variables (a .env file is loaded by the autoload
// import in main), then defaults.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Defaults mirror the original deployment: TCP on 12345, data files in the
// working directory.
const (
	DefaultPort    = "12345"
	DefaultWSPort  = "8080"
	DefaultDataDir = "."
	DefaultLevel   = "info"
)

// Config is the resolved runtime configuration.
type Config struct {
	Port     string // TCP listen port
	WSPort   string // WebSocket listen port; "0" disables the WS transport
	DataDir  string // directory holding users.txt, posts.txt and message logs
	LogLevel string // logrus level name
}

// WSEnabled reports whether the WebSocket listener should be started.
func (c *Config) WSEnabled() bool {
	return c.WSPort != "0"
}

// Load parses args (not including the program name) and merges them with the
// environment.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("chipichipi-server", pflag.ContinueOnError)
	port := fs.StringP("port", "p", "", "TCP listen port")
	wsPort := fs.String("ws-port", "", "WebSocket listen port, 0 to disable")
	dataDir := fs.StringP("data-dir", "d", "", "directory for the user snapshot and logs")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	return &Config{
		Port:     firstOf(*port, os.Getenv("PORT"), DefaultPort),
		WSPort:   firstOf(*wsPort, os.Getenv("WS_PORT"), DefaultWSPort),
		DataDir:  firstOf(*dataDir, os.Getenv("DATA_DIR"), DefaultDataDir),
		LogLevel: firstOf(*logLevel, os.Getenv("LOG_LEVEL"), DefaultLevel),
	}, nil
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
