// Package config loads tritedb's configuration surface (spec.md §6) from
// a TOML file, environment variables and defaults, using Viper — the
// pairing attested across the retrieval pack's small-server manifests.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Mode selects standalone or cluster operation.
type Mode string

const (
	Standalone Mode = "STANDALONE"
	Cluster    Mode = "CLUSTER"
)

// Config is the full configuration surface from spec.md §6, plus the
// pool-size and interval knobs SPEC_FULL.md §6 adds for the ones the
// original spec names but leaves undefaulted.
type Config struct {
	LogLevel   string `mapstructure:"log_level"`
	LogPath    string `mapstructure:"log_path"`
	UnixSocket string `mapstructure:"unix_socket"`
	IPAddress  string `mapstructure:"ip_address"`
	IPPort     int    `mapstructure:"ip_port"`

	MaxMemory      int64         `mapstructure:"max_memory"`
	MemReclaimTime time.Duration `mapstructure:"mem_reclaim_time"`
	MaxRequestSize uint32        `mapstructure:"max_request_size"`
	TCPBacklog     int           `mapstructure:"tcp_backlog"`
	Mode           Mode          `mapstructure:"mode"`

	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	StatsInterval  time.Duration `mapstructure:"stats_interval"`
	CommandWorkers int           `mapstructure:"command_workers"`
}

// defaults mirrors spec.md §6 plus SPEC_FULL.md §6's new knobs.
func defaults(v *viper.Viper) {
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_path", "")
	v.SetDefault("unix_socket", "")
	v.SetDefault("ip_address", "0.0.0.0")
	v.SetDefault("ip_port", 9090)
	v.SetDefault("max_memory", int64(0))
	v.SetDefault("mem_reclaim_time", "1m")
	v.SetDefault("max_request_size", uint32(50<<20))
	v.SetDefault("tcp_backlog", 128)
	v.SetDefault("mode", "STANDALONE")
	v.SetDefault("sweep_interval", "100ms")
	v.SetDefault("stats_interval", "5s")
	v.SetDefault("command_workers", 0)
}

// Load reads configuration from path (a TOML file; may be empty, in
// which case only defaults and environment overrides apply) into a
// Config. Environment variables are read with a TRITEDB_ prefix, e.g.
// TRITEDB_IP_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("tritedb")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
