package config

import (
	"fmt"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills gaps with defaults and flags anything that
// would make the engine misbehave. Warnings don't block a save.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	if out.App.Port == 0 {
		out.App.Port = DefaultPort
	}
	if out.App.Port < 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Scrape.TimeoutSeconds == 0 {
		out.Scrape.TimeoutSeconds = 60
	}
	if out.Scrape.TimeoutSeconds < 0 {
		res.addErr("scrape.timeout_seconds must be > 0")
	} else if out.Scrape.TimeoutSeconds < 5 {
		res.addWarn("scrape.timeout_seconds is very low (%d); slow sites will fail constantly.", out.Scrape.TimeoutSeconds)
	}

	if out.Scrape.HostRatePerSec == 0 {
		out.Scrape.HostRatePerSec = 1
	}
	if out.Scrape.HostRatePerSec < 0 {
		res.addErr("scrape.host_rate_per_sec must be > 0")
	}
	if out.Scrape.HostRateBurst <= 0 {
		out.Scrape.HostRateBurst = 2
	}

	if out.Scheduler.IntervalSeconds == 0 {
		out.Scheduler.IntervalSeconds = 60
	}
	if out.Scheduler.IntervalSeconds < 0 {
		res.addErr("scheduler.interval_seconds must be > 0")
	} else if out.Scheduler.IntervalSeconds < 10 {
		res.addWarn("scheduler.interval_seconds is very low (%d); hourly is the finest task frequency anyway.", out.Scheduler.IntervalSeconds)
	}

	if out.Scheduler.MaxConcurrentRuns == 0 {
		out.Scheduler.MaxConcurrentRuns = 2
	}
	if out.Scheduler.MaxConcurrentRuns < 0 {
		res.addErr("scheduler.max_concurrent_runs must be > 0")
	} else if out.Scheduler.MaxConcurrentRuns > 16 {
		res.addWarn("scheduler.max_concurrent_runs is high (%d); scheduled runs may hammer target sites.", out.Scheduler.MaxConcurrentRuns)
	}

	return out, res
}

// DefaultPort is the fixed local port the desktop UI expects.
const DefaultPort = 38561
