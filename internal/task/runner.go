package task

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"marketscope-engine/internal/events"
	"marketscope-engine/internal/fetch"
	"marketscope-engine/internal/scrape"
	"marketscope-engine/internal/store"
)

// ErrNoSelectors: the selector field parsed down to nothing usable.
var ErrNoSelectors = errors.New("No valid selectors provided.")

// Request is one scrape invocation, with or without a backing task record.
type Request struct {
	TargetURL     string `json:"targetUrl"`
	Selectors     string `json:"selectors"`
	DataToExtract string `json:"dataToExtract"`
}

// Runner drives the task lifecycle: Pending/Scheduled -> Running ->
// Completed|Failed. Terminal states may be re-run. Concurrent runs of the
// same task are not serialized; the stored result is last-write-wins.
type Runner struct {
	DB      *sql.DB
	Gateway *fetch.Gateway
	Hub     *events.Hub
}

// Scrape fetches the target and renders the full result text. Fetch
// failures are returned; per-selector failures are absorbed into the
// report, never into the error.
func (r *Runner) Scrape(ctx context.Context, req Request) (string, error) {
	selectors := scrape.ParseSelectors(req.Selectors)
	if len(selectors) == 0 {
		return "", ErrNoSelectors
	}

	html, err := r.Gateway.Get(ctx, req.TargetURL)
	if err != nil {
		return "", err
	}

	res := scrape.Extract(html, selectors)
	return scrape.BuildReport(req.TargetURL, req.DataToExtract, selectors, res), nil
}

// Run executes one stored task end to end and persists the outcome.
// The returned error reflects the run itself; persistence of a Failed
// status is still a successful Run from the store's point of view.
func (r *Runner) Run(ctx context.Context, id string) error {
	t, err := store.GetTask(ctx, r.DB, id)
	if err != nil {
		return err
	}

	if err := store.MarkTaskRunning(ctx, r.DB, id); err != nil {
		return err
	}
	r.publish(events.TypeTaskUpdated, t.ID, store.StatusRunning)

	text, scrapeErr := r.Scrape(ctx, Request{
		TargetURL:     t.TargetURL,
		Selectors:     t.Selectors,
		DataToExtract: t.DataToExtract,
	})

	now := time.Now().UTC()
	status := store.StatusCompleted
	if scrapeErr != nil {
		status = store.StatusFailed
		text = "Scraping failed: " + scrapeErr.Error()
		log.Printf("[task] run failed id=%s url=%s err=%v", t.ID, t.TargetURL, scrapeErr)
	}

	if err := store.FinishTask(ctx, r.DB, id, status, text, now); err != nil {
		return err
	}
	r.publish(events.TypeTaskUpdated, t.ID, status)
	return scrapeErr
}

func (r *Runner) publish(typ, id, status string) {
	if r.Hub == nil {
		return
	}
	r.Hub.Publish(events.MakeEvent("", typ, 1, map[string]any{"id": id, "status": status}))
}
