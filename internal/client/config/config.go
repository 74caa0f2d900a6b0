// Package config handles configuration for the terminal client.
package config

import (
	"flag"
	"os"

	"github.com/lostgates/identity/internal/flagx"
)

// Config holds client settings.
type Config struct {
	ServerAddress string
}

func (c *Config) LoadDefaults() {
	c.ServerAddress = "http://localhost:8080"
}

// LoadConfig applies defaults, then the ADDRESS environment variable,
// then the -a flag.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v := os.Getenv("ADDRESS"); v != "" {
		cfg.ServerAddress = v
	}

	args := flagx.FilterArgs(os.Args[1:], []string{"-a"})
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "identity server base URL")
	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	return cfg
}
