package scrape

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildReportSuccess(t *testing.T) {
	res := Result{
		AllTexts: []string{"Hello"},
		Outcomes: []Outcome{
			{Selector: "h1", Kind: Matched, Texts: []string{"Hello"}},
			{Selector: ".missing", Kind: NoMatch},
		},
	}

	got := BuildReport("https://example.com", "Page Titles", []string{"h1", ".missing"}, res)

	want := "Successfully scraped content for \"Page Titles\":\n\n" +
		"Hello\n\n" +
		"Attempted to scrape \"Page Titles\" from https://example.com.\n" +
		"Selectors used: h1; .missing\n\n" +
		"--- Detailed Selector Report ---\n" +
		"Selector \"h1\":\n  - Found texts:\n    \"Hello\"\n\n" +
		"Selector \".missing\": Did not match any elements."

	if got != want {
		t.Fatalf("report mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestBuildReportNoContent(t *testing.T) {
	res := Result{
		Outcomes: []Outcome{
			{Selector: ".blank", Kind: MatchedEmpty, ElementCount: 3},
			{Selector: "h9", Kind: NoMatch},
			{Selector: "h2:invalid-pseudo(", Kind: SelectorError, Err: "expected identifier, found ( instead"},
		},
	}

	got := BuildReport("https://example.com/p", "", []string{".blank", "h9", "h2:invalid-pseudo("}, res)

	if !strings.HasPrefix(got, "No text content was extracted.\n") {
		t.Fatalf("missing no-content header:\n%s", got)
	}
	for _, frag := range []string{
		"Attempted to scrape \"specified data\" from https://example.com/p.",
		"Selectors used: .blank; h9; h2:invalid-pseudo(",
		ReportMarker,
		"Selector \".blank\": Matched 3 element(s), but found no text content.",
		"Selector \"h9\": Did not match any elements.",
		"Selector \"h2:invalid-pseudo(\": Error during processing - expected identifier, found ( instead",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("report missing %q:\n%s", frag, got)
		}
	}
}

func TestBuildReportSelectorOrderPreserved(t *testing.T) {
	res := Result{
		AllTexts: []string{"b"},
		Outcomes: []Outcome{
			{Selector: ".z", Kind: NoMatch},
			{Selector: ".b", Kind: Matched, Texts: []string{"b"}},
			{Selector: ".a", Kind: NoMatch},
		},
	}
	got := BuildReport("https://example.com", "x", []string{".z", ".b", ".a"}, res)

	iz := strings.Index(got, "Selector \".z\"")
	ib := strings.Index(got, "Selector \".b\"")
	ia := strings.Index(got, "Selector \".a\"")
	if iz < 0 || ib < 0 || ia < 0 || !(iz < ib && ib < ia) {
		t.Fatalf("diagnostic order should match input order (z=%d b=%d a=%d):\n%s", iz, ib, ia, got)
	}
}

func TestExtractContentRoundTrip(t *testing.T) {
	res := Result{
		AllTexts: []string{"first", "second", "third"},
		Outcomes: []Outcome{
			{Selector: ".v", Kind: Matched, Texts: []string{"first", "second", "third"}},
		},
	}
	report := BuildReport("https://example.com", "values", []string{".v"}, res)

	content := ExtractContent(report)
	if content != "first\n---\nsecond\n---\nthird" {
		t.Fatalf("round-trip content = %q", content)
	}

	rows := ContentRows(content)
	if !reflect.DeepEqual(rows, []string{"first", "second", "third"}) {
		t.Fatalf("rows = %#v", rows)
	}
}

func TestExtractContentStripsPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   string
	}{
		{
			"no content report",
			"No text content was extracted.\nAttempted to scrape \"x\" from u.\nSelectors used: .a\n\n" + ReportMarker + "\nSelector \".a\": Did not match any elements.",
			"",
		},
		{
			"failure narrative",
			"Error during scraping:\nsomething broke",
			"something broke",
		},
		{
			"empty", "", "",
		},
		{
			"no marker passthrough",
			"just some stored text",
			"just some stored text",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractContent(tc.stored); got != tc.want {
				t.Fatalf("ExtractContent = %q, want %q", got, tc.want)
			}
		})
	}
}
