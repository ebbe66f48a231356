package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketscope-engine/internal/task"
)

type ScrapeHandler struct {
	Runner *task.Runner
}

// Run is POST /api/scrape: one ad-hoc scrape, no task record involved.
// The response contract is consumed literally by the dashboard and by the
// task runner, so the error strings here are part of the API surface.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, scrapeFailure{Error: "invalid JSON: " + err.Error()})
		return
	}

	if req.TargetURL == "" || req.Selectors == "" {
		WriteJSON(w, http.StatusBadRequest, scrapeFailure{Error: "Target URL and selectors are required."})
		return
	}

	text, err := h.Runner.Scrape(r.Context(), task.Request{
		TargetURL:     req.TargetURL,
		Selectors:     req.Selectors,
		DataToExtract: req.DataToExtract,
	})
	if err != nil {
		if errors.Is(err, task.ErrNoSelectors) {
			WriteJSON(w, http.StatusBadRequest, scrapeFailure{Error: err.Error()})
			return
		}
		// Fetch failed: no extraction was attempted. scrapedText still gets
		// a displayable string so the caller can store it as a task result.
		msg := err.Error()
		WriteJSON(w, http.StatusInternalServerError, scrapeFailure{
			Error:       msg,
			ScrapedText: "Scraping failed: " + msg,
		})
		return
	}

	WriteJSON(w, http.StatusOK, scrapeResponse{ScrapedText: text})
}
