package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marketscope-engine/internal/events"
	"marketscope-engine/internal/fetch"
	"marketscope-engine/internal/store"
	"marketscope-engine/internal/task"
)

func testHandler(t *testing.T) ScrapeHandler {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db.Pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return ScrapeHandler{Runner: &task.Runner{
		DB:      db.Pool,
		Gateway: fetch.NewGateway(5*time.Second, nil),
		Hub:     events.NewHub(),
	}}
}

func postScrape(t *testing.T, h ScrapeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Run(rec, req)
	return rec
}

func TestScrapeMissingFields(t *testing.T) {
	h := testHandler(t)

	for _, body := range []string{
		`{}`,
		`{"targetUrl":"https://example.com"}`,
		`{"selectors":"h1"}`,
	} {
		rec := postScrape(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad json response: %v", err)
		}
		if resp["error"] != "Target URL and selectors are required." {
			t.Errorf("error = %q", resp["error"])
		}
	}
}

func TestScrapeEmptySelectorList(t *testing.T) {
	h := testHandler(t)

	rec := postScrape(t, h, `{"targetUrl":"https://example.com","selectors":" ,\n , "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "No valid selectors provided." {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestScrapeSuccess(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Hello</h1><p>World</p></body></html>`))
	}))
	defer target.Close()

	h := testHandler(t)
	rec := postScrape(t, h, `{"targetUrl":"`+target.URL+`","selectors":"h1, .missing","dataToExtract":"titles"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ScrapedText string `json:"scrapedText"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, frag := range []string{
		`Successfully scraped content for "titles":`,
		"Hello",
		"--- Detailed Selector Report ---",
		`Selector ".missing": Did not match any elements.`,
	} {
		if !strings.Contains(resp.ScrapedText, frag) {
			t.Errorf("scrapedText missing %q:\n%s", frag, resp.ScrapedText)
		}
	}
}

func TestScrapeInvalidSelectorStill200(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>text</p></body></html>`))
	}))
	defer target.Close()

	h := testHandler(t)
	rec := postScrape(t, h, `{"targetUrl":"`+target.URL+`","selectors":"h2:invalid-pseudo(, p"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("per-selector failures must not fail the request: status = %d", rec.Code)
	}

	var resp struct {
		ScrapedText string `json:"scrapedText"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.Contains(resp.ScrapedText, "Error during processing -") {
		t.Errorf("selector error not reported:\n%s", resp.ScrapedText)
	}
	if !strings.Contains(resp.ScrapedText, "text") {
		t.Errorf("valid selector result missing:\n%s", resp.ScrapedText)
	}
}

func TestScrapeFetchFailure(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer target.Close()

	h := testHandler(t)
	rec := postScrape(t, h, `{"targetUrl":"`+target.URL+`","selectors":"h1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp struct {
		Error       string `json:"error"`
		ScrapedText string `json:"scrapedText"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Error, "Status: 503 - Service Unavailable") {
		t.Errorf("error = %q", resp.Error)
	}
	if !strings.HasPrefix(resp.ScrapedText, "Scraping failed: ") {
		t.Errorf("scrapedText = %q", resp.ScrapedText)
	}
}

func TestScrapeUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	h := testHandler(t)
	rec := postScrape(t, h, `{"targetUrl":"`+deadURL+`","selectors":"h1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp struct {
		Error       string `json:"error"`
		ScrapedText string `json:"scrapedText"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error == "" {
		t.Error("error must carry the underlying fetch failure")
	}
	if !strings.HasPrefix(resp.ScrapedText, "Scraping failed: ") {
		t.Errorf("scrapedText = %q", resp.ScrapedText)
	}
}
