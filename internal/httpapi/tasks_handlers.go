package httpapi

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketscope-engine/internal/events"
	"marketscope-engine/internal/scrape"
	"marketscope-engine/internal/store"
	"marketscope-engine/internal/task"
)

type TasksHandler struct {
	DB     *sql.DB
	Hub    *events.Hub
	Runner *task.Runner
}

func (h TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := store.ListTasks(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if tasks == nil {
		tasks = []store.Task{}
	}
	WriteJSON(w, http.StatusOK, tasks)
}

func (h TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if msg := validateTaskFields(req); msg != "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_task", msg)
		return
	}

	status := store.StatusScheduled
	if req.Frequency == store.FreqOnce {
		status = store.StatusPending
	}

	t := store.Task{
		ID:            newTaskID(),
		TaskName:      strings.TrimSpace(req.TaskName),
		TargetURL:     strings.TrimSpace(req.TargetURL),
		Selectors:     req.Selectors,
		DataToExtract: strings.TrimSpace(req.DataToExtract),
		Description:   strings.TrimSpace(req.Description),
		Frequency:     req.Frequency,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}

	if err := store.CreateTask(r.Context(), h.DB, t); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeTaskCreated, 1, map[string]any{"id": t.ID}))
	WriteJSON(w, http.StatusCreated, t)
}

// ServePath handles everything under /tasks/: the per-task CRUD plus the
// run and export actions.
func (h TasksHandler) ServePath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		WriteError(w, r, http.StatusNotFound, "not_found", "missing task id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "" && r.Method == http.MethodPut:
		h.update(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.delete(w, r, id)
	case action == "run" && r.Method == http.MethodPost:
		h.run(w, r, id)
	case action == "export" && r.Method == http.MethodGet:
		h.export(w, r, id)
	case action == "" || action == "run" || action == "export":
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	default:
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown task action")
	}
}

func (h TasksHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	t, err := store.GetTask(r.Context(), h.DB, id)
	if err != nil {
		writeTaskErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

func (h TasksHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if msg := validateTaskFields(req); msg != "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_task", msg)
		return
	}

	t := store.Task{
		ID:            id,
		TaskName:      strings.TrimSpace(req.TaskName),
		TargetURL:     strings.TrimSpace(req.TargetURL),
		Selectors:     req.Selectors,
		DataToExtract: strings.TrimSpace(req.DataToExtract),
		Description:   strings.TrimSpace(req.Description),
		Frequency:     req.Frequency,
	}
	if err := store.UpdateTask(r.Context(), h.DB, t); err != nil {
		writeTaskErr(w, r, err)
		return
	}

	updated, err := store.GetTask(r.Context(), h.DB, id)
	if err != nil {
		writeTaskErr(w, r, err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeTaskUpdated, 1, map[string]any{"id": id}))
	WriteJSON(w, http.StatusOK, updated)
}

func (h TasksHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := store.DeleteTask(r.Context(), h.DB, id); err != nil {
		writeTaskErr(w, r, err)
		return
	}
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeTaskDeleted, 1, map[string]any{"id": id}))
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// run triggers the task asynchronously and returns right away; progress
// lands on the task record and the SSE stream. A task already Running can
// be triggered again; the second run just wins the write race.
func (h TasksHandler) run(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := store.GetTask(r.Context(), h.DB, id); err != nil {
		writeTaskErr(w, r, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.Runner.Run(ctx, id); err != nil {
			log.Printf("[tasks] run id=%s err=%v", id, err)
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "id": id})
}

func (h TasksHandler) export(w http.ResponseWriter, r *http.Request, id string) {
	t, err := store.GetTask(r.Context(), h.DB, id)
	if err != nil {
		writeTaskErr(w, r, err)
		return
	}
	if t.LastScrapedData == "" {
		WriteError(w, r, http.StatusConflict, "no_data", "task has no scraped data to export")
		return
	}

	content := scrape.ExtractContent(t.LastScrapedData)
	rows := scrape.ContentRows(content)
	if len(rows) == 0 {
		WriteError(w, r, http.StatusConflict, "no_content", "no extracted content found in the last scrape result")
		return
	}

	name := strings.ReplaceAll(t.TaskName, " ", "_") + "_scraped_data.csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	var b strings.Builder
	b.WriteString("ScrapedContent\n")
	for _, row := range rows {
		b.WriteString(`"` + strings.ReplaceAll(row, `"`, `""`) + `"` + "\n")
	}
	_, _ = w.Write([]byte(b.String()))
}

func writeTaskErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrTaskNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "task not found")
		return
	}
	WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
}

func validateTaskFields(req createTaskRequest) string {
	if len(strings.TrimSpace(req.TaskName)) < 3 {
		return "taskName must be at least 3 characters"
	}
	u, err := url.Parse(strings.TrimSpace(req.TargetURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "targetUrl must be an absolute URL"
	}
	if strings.TrimSpace(req.DataToExtract) == "" {
		return "dataToExtract is required"
	}
	if len(scrape.ParseSelectors(req.Selectors)) == 0 {
		return "selectors must contain at least one selector"
	}
	if !store.ValidFrequency(req.Frequency) {
		return "frequency must be one of: once, hourly, daily, weekly, monthly"
	}
	return ""
}

func newTaskID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
