package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	StatusPending   = "Pending"
	StatusScheduled = "Scheduled"
	StatusRunning   = "Running"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

const (
	FreqOnce    = "once"
	FreqHourly  = "hourly"
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
)

var ErrTaskNotFound = errors.New("task not found")

// Task is one configured scrape job plus its most recent run. The record
// is the sole owner of its scrape history; there is no separate audit log.
type Task struct {
	ID              string     `json:"id"`
	TaskName        string     `json:"taskName"`
	TargetURL       string     `json:"targetUrl"`
	Selectors       string     `json:"selectors"`
	DataToExtract   string     `json:"dataToExtract"`
	Description     string     `json:"description,omitempty"`
	Frequency       string     `json:"frequency"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastRun         *time.Time `json:"lastRun,omitempty"`
	LastScrapedData string     `json:"lastScrapedData,omitempty"`
}

// ValidFrequency reports whether f is one of the supported run frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FreqOnce, FreqHourly, FreqDaily, FreqWeekly, FreqMonthly:
		return true
	}
	return false
}

// FrequencyInterval maps a repeat frequency to its re-run interval.
// "once" (and anything unknown) returns 0: never auto-run.
func FrequencyInterval(f string) time.Duration {
	switch f {
	case FreqHourly:
		return time.Hour
	case FreqDaily:
		return 24 * time.Hour
	case FreqWeekly:
		return 7 * 24 * time.Hour
	case FreqMonthly:
		return 30 * 24 * time.Hour
	}
	return 0
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  task_name TEXT NOT NULL,
  target_url TEXT NOT NULL,
  selectors TEXT NOT NULL,
  data_to_extract TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  frequency TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL,
  last_run TEXT NOT NULL DEFAULT '',
  last_scraped_data TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_tasks_created_at
ON tasks(created_at DESC);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_tasks_status
ON tasks(status);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func CreateTask(ctx context.Context, db *sql.DB, t Task) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO tasks(id, task_name, target_url, selectors, data_to_extract, description, frequency, status, created_at, last_run, last_scraped_data)
VALUES(?,?,?,?,?,?,?,?,?,?,?);`,
		t.ID,
		t.TaskName,
		t.TargetURL,
		t.Selectors,
		t.DataToExtract,
		t.Description,
		t.Frequency,
		t.Status,
		t.CreatedAt.UTC().Format(time.RFC3339),
		formatLastRun(t.LastRun),
		t.LastScrapedData,
	)
	return err
}

func ListTasks(ctx context.Context, db *sql.DB) ([]Task, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, task_name, target_url, selectors, data_to_extract, description, frequency, status, created_at, last_run, last_scraped_data
FROM tasks
ORDER BY created_at DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func GetTask(ctx context.Context, db *sql.DB, id string) (Task, error) {
	row := db.QueryRowContext(ctx, `
SELECT id, task_name, target_url, selectors, data_to_extract, description, frequency, status, created_at, last_run, last_scraped_data
FROM tasks
WHERE id = ?;`, id)

	t, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	return t, err
}

// UpdateTask rewrites the editable fields of a task. Status, run history
// and scraped data are owned by the lifecycle transitions, not by edits.
func UpdateTask(ctx context.Context, db *sql.DB, t Task) error {
	res, err := db.ExecContext(ctx, `
UPDATE tasks
SET task_name = ?, target_url = ?, selectors = ?, data_to_extract = ?, description = ?, frequency = ?
WHERE id = ?;`,
		t.TaskName, t.TargetURL, t.Selectors, t.DataToExtract, t.Description, t.Frequency, t.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func DeleteTask(ctx context.Context, db *sql.DB, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MarkTaskRunning flips a task to Running. Last-write-wins: a second run
// triggered before the first finishes just overwrites, there is no lock.
func MarkTaskRunning(ctx context.Context, db *sql.DB, id string) error {
	res, err := db.ExecContext(ctx, `
UPDATE tasks SET status = ? WHERE id = ?;`, StatusRunning, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FinishTask records the terminal transition of a run: Completed or Failed,
// the rendered result text, and the run timestamp.
func FinishTask(ctx context.Context, db *sql.DB, id, status, scrapedData string, ranAt time.Time) error {
	res, err := db.ExecContext(ctx, `
UPDATE tasks
SET status = ?, last_scraped_data = ?, last_run = ?
WHERE id = ?;`,
		status, scrapedData, ranAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (Task, error) {
	var t Task
	var createdStr, lastRunStr string
	if err := scan(
		&t.ID,
		&t.TaskName,
		&t.TargetURL,
		&t.Selectors,
		&t.DataToExtract,
		&t.Description,
		&t.Frequency,
		&t.Status,
		&createdStr,
		&lastRunStr,
		&t.LastScrapedData,
	); err != nil {
		return Task{}, err
	}

	var err error
	t.CreatedAt, err = time.Parse(time.RFC3339, createdStr)
	if err != nil {
		return Task{}, fmt.Errorf("task %s: bad created_at %q: %w", t.ID, createdStr, err)
	}
	if lastRunStr != "" {
		lr, err := time.Parse(time.RFC3339, lastRunStr)
		if err != nil {
			return Task{}, fmt.Errorf("task %s: bad last_run %q: %w", t.ID, lastRunStr, err)
		}
		t.LastRun = &lr
	}
	return t, nil
}

func formatLastRun(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
