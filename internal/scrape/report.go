package scrape

import (
	"fmt"
	"regexp"
	"strings"
)

// ReportMarker separates the summary from the per-selector diagnostics.
// Stored task results are later sliced at this exact string (CSV export,
// insight feed), so it must never change.
const ReportMarker = "--- Detailed Selector Report ---"

// BuildReport renders a Result into the stored result text: a summary of
// everything extracted, then a diagnostic paragraph per selector in input
// order. The literal phrasing is a wire format for downstream consumers,
// not just display text.
func BuildReport(targetURL, dataToExtract string, selectors []string, res Result) string {
	label := dataToExtract
	if label == "" {
		label = "specified data"
	}

	intro := fmt.Sprintf("Attempted to scrape \"%s\" from %s.\nSelectors used: %s\n\n%s\n",
		label, targetURL, strings.Join(selectors, "; "), ReportMarker)

	parts := make([]string, 0, len(res.Outcomes))
	for _, oc := range res.Outcomes {
		parts = append(parts, outcomeParagraph(oc))
	}
	body := strings.Join(parts, "\n\n")

	if len(res.AllTexts) > 0 {
		return fmt.Sprintf("Successfully scraped content for \"%s\":\n\n%s\n\n%s%s",
			label, strings.Join(res.AllTexts, "\n---\n"), intro, body)
	}
	return fmt.Sprintf("No text content was extracted.\n%s%s", intro, body)
}

func outcomeParagraph(oc Outcome) string {
	switch oc.Kind {
	case Matched:
		quoted := make([]string, 0, len(oc.Texts))
		for _, t := range oc.Texts {
			quoted = append(quoted, "\""+t+"\"")
		}
		return fmt.Sprintf("Selector \"%s\":\n  - Found texts:\n    %s",
			oc.Selector, strings.Join(quoted, "\n    "))
	case MatchedEmpty:
		return fmt.Sprintf("Selector \"%s\": Matched %d element(s), but found no text content.",
			oc.Selector, oc.ElementCount)
	case NoMatch:
		return fmt.Sprintf("Selector \"%s\": Did not match any elements.", oc.Selector)
	case SelectorError:
		return fmt.Sprintf("Selector \"%s\": Error during processing - %s", oc.Selector, oc.Err)
	}
	return fmt.Sprintf("Selector \"%s\": unknown outcome", oc.Selector)
}

var (
	successPrefixRe = regexp.MustCompile(`(?i)^Successfully scraped content for "[^"]+":\s*\n*`)
	noContentRe     = regexp.MustCompile(`(?i)^No text content was extracted\.\s*\n*`)
	errorPrefixRe   = regexp.MustCompile(`(?i)^Error during scraping:\s*\n*`)
	introTailRe     = regexp.MustCompile(`\n*Attempted to scrape "[^"]*" from [^\n]*\nSelectors used: [^\n]*\s*$`)
	rowSplitRe      = regexp.MustCompile(`\n---\n|\n`)
)

// ExtractContent recovers just the scraped values from a stored report:
// truncate at the diagnostic marker, strip the known summary prefixes, and
// drop the report introduction that precedes the marker.
func ExtractContent(stored string) string {
	if stored == "" {
		return ""
	}
	if i := strings.Index(stored, ReportMarker); i >= 0 {
		stored = stored[:i]
	}
	stored = introTailRe.ReplaceAllString(stored, "")
	stored = strings.TrimSpace(successPrefixRe.ReplaceAllString(stored, ""))
	stored = strings.TrimSpace(noContentRe.ReplaceAllString(stored, ""))
	stored = strings.TrimSpace(errorPrefixRe.ReplaceAllString(stored, ""))
	return stored
}

// ContentRows splits recovered content into one value per row, for CSV
// export. The `---` separators and bare newlines both delimit rows.
func ContentRows(content string) []string {
	var rows []string
	for _, line := range rowSplitRe.Split(content, -1) {
		line = strings.TrimSpace(line)
		if line == "---" || line == "" {
			continue
		}
		rows = append(rows, line)
	}
	return rows
}
