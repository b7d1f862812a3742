package query

import (
	"fmt"
	"sort"
	"strings"
)

const baseScore = 50

// Score ranks candidates against characteristics c using the static
// additive bonus table. Descriptors not present in candidates are
// ignored; the result is sorted by score descending, ties broken by
// the input order of candidates.
func Score(c Characteristics, descriptors map[string]Descriptor, candidates []string) []Scored {
	results := make([]Scored, 0, len(candidates))
	for _, name := range candidates {
		d, ok := descriptors[name]
		if !ok {
			continue
		}
		results = append(results, scoreOne(c, d))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func scoreOne(c Characteristics, d Descriptor) Scored {
	score := baseScore
	var reasons []string

	if d.StrongFor[c.QueryType] {
		score += 30
		reasons = append(reasons, fmt.Sprintf("Excellent for %s queries", c.QueryType))
	} else if c.QueryType == TypeGeneral {
		score += 10
	}

	if c.Complexity == ComplexityComplex && d.ComplexityHandling >= 0.9 {
		score += 20
		reasons = append(reasons, "Handles complex queries well")
	}
	if c.Complexity == ComplexitySimple && d.FastResponse {
		score += 15
		reasons = append(reasons, "Fast for simple queries")
	}
	if c.RequiresRecency && d.RecencyScore >= 0.8 {
		score += 20
		reasons = append(reasons, "Good with recent information")
	}
	if c.HasOperators && d.OperatorSupport >= 0.8 {
		score += 15
		reasons = append(reasons, "Strong operator support")
	}
	if domain, ok := matchedDomain(c.DomainsMentioned, d.GoodWithDomains); ok {
		score += 10
		reasons = append(reasons, fmt.Sprintf("Good with %s", domain))
	}
	if d.AIPowered && c.Complexity == ComplexityComplex {
		score += 10
		reasons = append(reasons, "AI-powered analysis")
	}
	if d.PrivacyFocused && c.QueryType != TypeAcademic {
		score += 5
		reasons = append(reasons, "Privacy-focused")
	}
	if d.NoAds && c.QueryType == TypeTechnical {
		score += 10
		reasons = append(reasons, "No ads, clean results")
	}

	return Scored{Provider: d.Name, Score: score, Reasons: reasons}
}

func matchedDomain(mentioned, goodWith []string) (string, bool) {
	for _, d := range mentioned {
		for _, g := range goodWith {
			if g == "*" || strings.Contains(d, g) {
				return d, true
			}
		}
	}
	return "", false
}

// Recommend returns the top-scored candidate as a Recommendation, with
// up to two alternatives from the next rankings. An empty candidate
// set yields zero confidence and an empty provider.
func Recommend(c Characteristics, descriptors map[string]Descriptor, candidates []string) Recommendation {
	ranked := Score(c, descriptors, candidates)
	if len(ranked) == 0 {
		return Recommendation{}
	}

	top := ranked[0]
	confidence := top.Score
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	var alternatives []string
	for _, r := range ranked[1:] {
		if len(alternatives) == 2 {
			break
		}
		alternatives = append(alternatives, r.Provider)
	}

	return Recommendation{
		Provider:     top.Provider,
		Confidence:   confidence,
		Reasoning:    strings.Join(top.Reasons, "; "),
		Alternatives: alternatives,
	}
}
