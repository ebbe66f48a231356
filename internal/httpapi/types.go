package httpapi

// scrapeRequest is the POST /api/scrape body. Selectors is the raw
// newline/comma-delimited field exactly as the task form stores it.
type scrapeRequest struct {
	TargetURL     string `json:"targetUrl"`
	Selectors     string `json:"selectors"`
	DataToExtract string `json:"dataToExtract"`
}

// scrapeResponse is the success payload: the rendered result text that is
// also what gets stored on a task record.
type scrapeResponse struct {
	ScrapedText string `json:"scrapedText"`
}

// scrapeFailure carries both a machine-usable error and a display string
// so the caller can store a uniform "Scraping failed: ..." result.
type scrapeFailure struct {
	Error       string `json:"error"`
	ScrapedText string `json:"scrapedText,omitempty"`
}

// createTaskRequest is the POST /tasks body.
type createTaskRequest struct {
	TaskName      string `json:"taskName"`
	TargetURL     string `json:"targetUrl"`
	Selectors     string `json:"selectors"`
	DataToExtract string `json:"dataToExtract"`
	Description   string `json:"description"`
	Frequency     string `json:"frequency"`
}
