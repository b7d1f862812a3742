package query

// typeOrder is the fixed declaration order classification ties break to
// (the first type encountered wins a tied score). general is never a
// target of indicator matching; it is the fallback for an all-zero score.
var typeOrder = []Type{
	TypeTechnical,
	TypeCode,
	TypeAcademic,
	TypeCurrentEvents,
	TypeHowTo,
	TypeDefinition,
	TypeProduct,
	TypeLocal,
	TypeFactual,
}

// indicators maps each classifiable type to its ordered phrase list.
// A phrase's weight is its token count; every matched phrase in the
// lowercased query contributes its weight to that type's total.
var indicators = map[Type][]string{
	TypeTechnical: {
		"implement", "authentication", "websocket", "configure", "integration",
		"debug", "exception", "sdk", "framework", "deploy", "architecture",
	},
	TypeCode: {
		"function", "variable", "algorithm", "syntax", "compile",
		"python", "javascript", "golang", "node.js", "code snippet",
	},
	TypeAcademic: {
		"research", "papers", "paper", "study", "journal", "thesis",
		"academic", "peer reviewed", "citation",
	},
	TypeCurrentEvents: {
		"latest", "breaking", "news", "today", "this week", "2024", "2025", "2026",
	},
	TypeHowTo: {
		"how to", "how do i", "steps to", "guide to", "tutorial for",
	},
	TypeDefinition: {
		"what is", "define", "definition of", "meaning of",
	},
	TypeProduct: {
		"best", "top rated", "buy", "price", "review", "vs", "compare",
	},
	TypeLocal: {
		"near me", "in my area", "nearby", "local",
	},
	TypeFactual: {
		"who is", "when did", "where is", "how many", "fact about",
	},
}

// recencyIndicators are phrases that set requires_recency regardless
// of which type wins classification.
var recencyIndicators = []string{
	"latest", "recent", "today", "now", "this week", "breaking", "current",
}

// complexityConjunctions are standalone words that add 1 to the
// complexity score.
var complexityConjunctions = []string{"and", "or", "but", "with", "without", "except"}

// complexityComparatives are standalone words that add 1 to the
// complexity score.
var complexityComparatives = []string{"vs", "versus", "compare", "better", "worse", "than"}

// operatorTokens are substrings that indicate a query uses search
// operators.
var operatorTokens = []string{"site:", "filetype:", "intitle:", "inurl:", "\""}

// stopWords are removed from the keyword set.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	"and": true, "or": true, "but": true, "not": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "its": true, "as": true, "from": true,
	"how": true, "what": true, "when": true, "where": true, "who": true, "why": true,
	"do": true, "does": true, "did": true, "can": true, "could": true, "will": true,
	"would": true, "should": true, "i": true, "you": true, "my": true, "me": true,
}
