package httpapi

import (
	"database/sql"
	"sync/atomic"

	"marketscope-engine/internal/config"
	"marketscope-engine/internal/events"
	"marketscope-engine/internal/task"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Runner *task.Runner

	// Atomic store for config.Config (hot-reloaded on PUT /config)
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
