package state

import (
	"path/filepath"

	"github.com/mauv0809/soloq-tracker/internal/config"
)

func configFor(backend, dir string) config.StateConfig {
	return config.StateConfig{
		Backend:  backend,
		Path:     filepath.Join(dir, "tracker_state.json"),
		DBName:   filepath.Join(dir, "tracker.db"),
		RedisKey: "soloq-tracker:state",
	}
}
