package poll

import (
	"context"
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"marketscope-engine/internal/config"
	"marketscope-engine/internal/store"
	"marketscope-engine/internal/task"
)

// IsDue reports whether a repeating task should be auto-run at now.
// "once" tasks are only ever run by hand, and a task already Running is
// left alone (though a manual re-run is still allowed to race it).
func IsDue(t store.Task, now time.Time) bool {
	if t.Frequency == store.FreqOnce {
		return false
	}
	if t.Status == store.StatusRunning || t.Status == store.StatusPending {
		return false
	}
	interval := store.FrequencyInterval(t.Frequency)
	if interval <= 0 {
		return false
	}
	if t.LastRun == nil {
		return true
	}
	return now.Sub(*t.LastRun) >= interval
}

// StartPoller ticks at the configured interval and runs whatever tasks
// have come due, a bounded number at a time.
func StartPoller(db *sql.DB, cfgVal *atomic.Value, runner *task.Runner) {
	go func() {
		for {
			cfg, ok := cfgVal.Load().(config.Config)
			if !ok {
				time.Sleep(time.Second)
				continue
			}

			interval := time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second
			if interval <= 0 {
				interval = time.Minute
			}
			time.Sleep(interval)

			if n := runDue(db, cfg, runner); n > 0 {
				log.Printf("[poll] ran %d due task(s)", n)
			}
		}
	}()
}

func runDue(db *sql.DB, cfg config.Config, runner *task.Runner) int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	tasks, err := store.ListTasks(ctx, db)
	if err != nil {
		log.Printf("[poll] list tasks: %v", err)
		return 0
	}

	now := time.Now().UTC()
	var due []store.Task
	for _, t := range tasks {
		if IsDue(t, now) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return 0
	}

	var g errgroup.Group
	limit := cfg.Scheduler.MaxConcurrentRuns
	if limit <= 0 {
		limit = 2
	}
	g.SetLimit(limit)

	for _, t := range due {
		t := t
		g.Go(func() error {
			if err := runner.Run(ctx, t.ID); err != nil {
				// run failures are already persisted on the task record
				log.Printf("[poll] task %s: %v", t.ID, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return len(due)
}
