package query

import (
	"regexp"
	"strconv"
	"strings"
)

var domainPattern = regexp.MustCompile(`(?:site:|from:|@|on )?\b([a-z0-9][a-z0-9-]*(?:\.[a-z0-9][a-z0-9-]*)*\.[a-z]{2,})\b`)

var wordPattern = regexp.MustCompile(`[a-z0-9][a-z0-9.'-]*`)

// Analyze deterministically derives Characteristics from a raw query
// string. Two calls with the same query always return equal output.
func Analyze(q string) Characteristics {
	lower := strings.ToLower(strings.TrimSpace(q))

	qt := classify(lower)
	complexity := complexityOf(lower)
	domains := extractDomains(lower)
	hasOperators := detectOperators(lower)
	requiresRecency := detectRecency(lower)
	sentiment := sentimentOf(lower)
	keywords := extractKeywords(lower)
	intent := intentOf(qt, lower)

	return Characteristics{
		QueryType:        qt,
		DomainsMentioned: domains,
		RequiresRecency:  requiresRecency,
		Complexity:       complexity,
		HasOperators:     hasOperators,
		Sentiment:        sentiment,
		LikelyIntent:     intent,
		Keywords:         keywords,
	}
}

func classify(lower string) Type {
	best := TypeGeneral
	bestScore := 0
	for _, t := range typeOrder {
		score := 0
		for _, phrase := range indicators[t] {
			if containsPhrase(lower, phrase) {
				score += len(strings.Fields(phrase))
			}
		}
		if score > bestScore {
			bestScore = score
			best = t
		}
	}
	return best
}

func containsPhrase(lower, phrase string) bool {
	return strings.Contains(lower, phrase)
}

func complexityOf(lower string) Complexity {
	words := strings.Fields(lower)
	score := wordCountBand(len(words))

	if hasStandaloneWord(words, complexityConjunctions) {
		score++
	}
	if hasStandaloneWord(words, complexityComparatives) {
		score++
	}
	if strings.Count(lower, "?") >= 2 {
		score += 2
	}

	switch {
	case score >= 3:
		return ComplexityComplex
	case score >= 1:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

func wordCountBand(n int) int {
	switch {
	case n > 15:
		return 2
	case n > 8:
		return 1
	default:
		return 0
	}
}

func hasStandaloneWord(words, set []string) bool {
	lookup := make(map[string]bool, len(set))
	for _, s := range set {
		lookup[s] = true
	}
	for _, w := range words {
		if lookup[strings.Trim(w, "?,.!")] {
			return true
		}
	}
	return false
}

func extractDomains(lower string) []string {
	matches := domainPattern.FindAllStringSubmatch(lower, -1)
	seen := map[string]bool{}
	var domains []string
	for _, m := range matches {
		d := m[1]
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}
	return domains
}

func detectOperators(lower string) bool {
	for _, tok := range operatorTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func detectRecency(lower string) bool {
	for _, ind := range recencyIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return yearPattern.MatchString(lower)
}

var yearPattern = regexp.MustCompile(`\b20[2-9][0-9]\b`)

func sentimentOf(lower string) Sentiment {
	if hasStandaloneWord(strings.Fields(lower), complexityComparatives) {
		return SentimentComparative
	}
	if strings.HasPrefix(lower, "why") || strings.HasPrefix(lower, "how") || strings.Contains(lower, "?") {
		return SentimentInvestigative
	}
	return SentimentNeutral
}

func intentOf(qt Type, lower string) Intent {
	switch {
	case (qt == TypeTechnical || qt == TypeCode) && (strings.Contains(lower, "error") || strings.Contains(lower, "bug") || strings.Contains(lower, "fix") || strings.Contains(lower, "debug")):
		return IntentTroubleshoot
	case qt == TypeProduct && (strings.Contains(lower, "buy") || strings.Contains(lower, "price")):
		return IntentPurchase
	case qt == TypeProduct || strings.Contains(lower, "vs") || strings.Contains(lower, "compare"):
		return IntentCompareOptions
	case qt == TypeLocal:
		return IntentFindLocation
	case qt == TypeHowTo || qt == TypeDefinition || qt == TypeAcademic:
		return IntentLearn
	default:
		return IntentGeneral
	}
}

func extractKeywords(lower string) []string {
	tokens := wordPattern.FindAllString(lower, -1)
	seen := map[string]bool{}
	var keywords []string
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		if stopWords[tok] {
			continue
		}
		if _, err := strconv.Atoi(tok); err == nil {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}
