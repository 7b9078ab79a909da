package cliconfig

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from LIFEWIRE_* environment variables.
// Environment overrides file config but is overridden by explicit flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setStrings("watch", splitList(os.Getenv("LIFEWIRE_WATCH_PATHS")), &cfg.WatchPaths)
	s.setString("log-level", os.Getenv("LIFEWIRE_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("tick-interval", os.Getenv("LIFEWIRE_TICK_INTERVAL"), &cfg.TickInterval); err != nil {
		return err
	}

	s.setBoolFromString("pretty", os.Getenv("LIFEWIRE_PRETTY"), &cfg.Pretty)
	s.setBoolFromString("once", os.Getenv("LIFEWIRE_ONCE"), &cfg.Once)

	return nil
}

// splitList splits a comma-separated environment value, dropping empty parts.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
