// Package cfg loads the core's tunables: strict-mode ordering, duplicate
// handling, which engine a new position table defaults to, and the
// small-waiter safety-net poll interval.
package cfg

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// Configuration holds every tunable this module reads. Embedding it in a
// larger server's TOML config is the expected integration point.
type Configuration struct {
	NodeID uint64 `toml:"node_id"`

	// StrictMode enables BinlogState's gap/order rejections and Window's
	// stop-overshoot warning behavior (warn and finish, not abort).
	StrictMode bool `toml:"strict_mode"`

	// IgnoreDuplicates enables SlaveState.CheckDuplicate's ownership
	// protocol instead of treating every incoming GTID as novel.
	IgnoreDuplicates bool `toml:"ignore_duplicates"`

	// DefaultPositionTableEngine names the engine select_gtid_pos_table
	// falls back to when no engine-specific table is Available.
	DefaultPositionTableEngine string `toml:"default_position_table_engine"`

	// WaitPollInterval arms WaitRegistry's safety-net poll of a blocked
	// session's kill flag. Zero disables the poll (pure event-driven
	// wakeup via OnApply).
	WaitPollInterval time.Duration `toml:"wait_poll_interval"`

	Metrics MetricsConfiguration `toml:"metrics"`
}

// MetricsConfiguration controls the telemetry package's Prometheus wiring.
type MetricsConfiguration struct {
	Enabled bool `toml:"enabled"`
}

// Config is the process-wide configuration, a package-level mutable
// default. Callers that need isolation (e.g. parallel tests) should
// construct their own Configuration value instead of mutating this one.
var Config = &Configuration{
	StrictMode:                 true,
	IgnoreDuplicates:           false,
	DefaultPositionTableEngine: "default",
	WaitPollInterval:           5 * time.Second,
	Metrics:                    MetricsConfiguration{Enabled: true},
}

// Load reads configPath into Config if it exists; a missing file is not an
// error, falling back to the defaults above.
func Load(configPath string) error {
	if configPath == "" {
		return nil
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Warn().Str("path", configPath).Msg("config file not found, using defaults")
		return nil
	}

	log.Info().Str("path", configPath).Msg("loading configuration")
	if _, err := toml.DecodeFile(configPath, Config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}
