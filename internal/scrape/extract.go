package scrape

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Extract parses html once and applies each selector independently.
// A selector that fails to compile or apply is recorded as SelectorError
// and never aborts the rest of the batch.
func Extract(html string, selectors []string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// net/html recovers from almost any input; an error here means the
		// body could not be tokenized at all. Treat it as an empty page.
		log.Printf("[scrape] html parse failed, treating as empty document: %v", err)
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}

	var res Result
	for _, sel := range selectors {
		if strings.HasPrefix(sel, "/") || strings.HasPrefix(sel, "(") {
			log.Printf("[scrape] xpath-looking selector %q; only CSS selectors are supported, this will likely match nothing", sel)
		}

		oc := applySelector(doc, sel)
		if oc.Kind == Matched {
			res.AllTexts = append(res.AllTexts, oc.Texts...)
		}
		res.Outcomes = append(res.Outcomes, oc)
	}
	return res
}

func applySelector(doc *goquery.Document, sel string) (oc Outcome) {
	oc.Selector = sel

	// Isolation guarantee: whatever the selector engine does, the batch
	// keeps going.
	defer func() {
		if rec := recover(); rec != nil {
			oc = Outcome{Selector: sel, Kind: SelectorError, Err: fmt.Sprint(rec)}
		}
	}()

	// goquery's own Find swallows compile errors and silently matches
	// nothing; compiling through cascadia keeps bad syntax distinguishable
	// from a genuine no-match.
	matcher, err := cascadia.Compile(sel)
	if err != nil {
		oc.Kind = SelectorError
		oc.Err = err.Error()
		return oc
	}

	nodes := doc.FindMatcher(matcher)
	if nodes.Length() == 0 {
		oc.Kind = NoMatch
		return oc
	}

	var texts []string
	nodes.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			texts = append(texts, t)
		}
	})

	if len(texts) == 0 {
		oc.Kind = MatchedEmpty
		oc.ElementCount = nodes.Length()
		return oc
	}

	oc.Kind = Matched
	oc.Texts = texts
	return oc
}
