package gate

// MinWords is the smallest word count that can be visualized.
const MinWords = 3

type Decision int

const (
	Proceed Decision = iota
	NeedsQuery
	NeedsMoreWords
)

// Evaluate decides whether a visualization may be requested. A missing
// central query is reported before an insufficient word count.
func Evaluate(wordCount int, hasCentralQuery bool) Decision {
	if !hasCentralQuery {
		return NeedsQuery
	}
	if wordCount < MinWords {
		return NeedsMoreWords
	}
	return Proceed
}

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case NeedsQuery:
		return "needs_query"
	case NeedsMoreWords:
		return "needs_more_words"
	default:
		return "unknown"
	}
}

// Message is the notice shown to the user when the decision is not Proceed.
func (d Decision) Message() string {
	switch d {
	case NeedsQuery:
		return "Set a central query to see the visualization."
	case NeedsMoreWords:
		return "Add more words to see the visualization (minimum 3 required)."
	default:
		return ""
	}
}
