package scrape

// OutcomeKind classifies what applying one selector to one document produced.
type OutcomeKind int

const (
	// Matched: the selector hit >=1 element and at least one had text.
	Matched OutcomeKind = iota
	// MatchedEmpty: elements matched but every one was empty after trimming.
	MatchedEmpty
	// NoMatch: zero elements matched.
	NoMatch
	// SelectorError: the selector could not be applied (bad syntax etc).
	SelectorError
)

// Outcome is the per-selector record. Exactly one of Texts, ElementCount,
// or Err is meaningful, depending on Kind.
type Outcome struct {
	Selector     string
	Kind         OutcomeKind
	Texts        []string // Matched: non-empty trimmed texts, document order
	ElementCount int      // MatchedEmpty: how many elements matched
	Err          string   // SelectorError: what went wrong
}

// Result aggregates one full extraction run.
type Result struct {
	// AllTexts is every Matched text, selector order then document order.
	AllTexts []string
	// Outcomes has one entry per input selector, in input order.
	Outcomes []Outcome
}
