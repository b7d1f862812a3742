package query_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jordigilh/omnisearch-orchestrator/pkg/query"
)

var _ = Describe("Recommend", func() {
	descriptors := map[string]query.Descriptor{
		"kagi": {
			Name:               "kagi",
			StrongFor:          map[query.Type]bool{query.TypeTechnical: true},
			ComplexityHandling: 0.8,
			OperatorSupport:    0.9,
			NoAds:              true,
			PrivacyFocused:     true,
			FastResponse:       true,
		},
		"tavily": {
			Name:               "tavily",
			StrongFor:          map[query.Type]bool{query.TypeAcademic: true},
			RecencyScore:       0.9,
			ComplexityHandling: 0.95,
			AIPowered:          true,
		},
	}

	It("scores a strong-for match above base", func() {
		c := query.Characteristics{QueryType: query.TypeTechnical, Complexity: query.ComplexitySimple}
		ranked := query.Score(c, descriptors, []string{"kagi", "tavily"})
		Expect(ranked[0].Provider).To(Equal("kagi"))
		Expect(ranked[0].Score).To(BeNumerically(">", 50))
		Expect(ranked[0].Reasons).To(ContainElement("Excellent for technical queries"))
	})

	It("awards the fast-response bonus only for simple complexity", func() {
		c := query.Characteristics{QueryType: query.TypeGeneral, Complexity: query.ComplexitySimple}
		scored := query.Score(c, descriptors, []string{"kagi"})[0]
		Expect(scored.Reasons).To(ContainElement("Fast for simple queries"))
	})

	It("awards the recency bonus when requires_recency and recency_score is high", func() {
		c := query.Characteristics{QueryType: query.TypeAcademic, RequiresRecency: true, Complexity: query.ComplexityModerate}
		scored := query.Score(c, descriptors, []string{"tavily"})[0]
		Expect(scored.Reasons).To(ContainElement("Good with recent information"))
	})

	It("awards the AI-powered bonus only for complex queries", func() {
		c := query.Characteristics{QueryType: query.TypeAcademic, Complexity: query.ComplexityComplex}
		scored := query.Score(c, descriptors, []string{"tavily"})[0]
		Expect(scored.Reasons).To(ContainElement("AI-powered analysis"))
	})

	It("withholds the privacy bonus for academic queries", func() {
		c := query.Characteristics{QueryType: query.TypeAcademic, Complexity: query.ComplexitySimple}
		scored := query.Score(c, descriptors, []string{"kagi"})[0]
		Expect(scored.Reasons).NotTo(ContainElement("Privacy-focused"))
	})

	It("returns zero confidence and no provider for an empty candidate set", func() {
		rec := query.Recommend(query.Characteristics{}, descriptors, nil)
		Expect(rec.Provider).To(Equal(""))
		Expect(rec.Confidence).To(Equal(0))
	})

	It("caps confidence at 100 and returns up to two alternatives", func() {
		three := map[string]query.Descriptor{
			"a": {Name: "a", StrongFor: map[query.Type]bool{query.TypeTechnical: true}, ComplexityHandling: 0.95, OperatorSupport: 0.95, AIPowered: true, NoAds: true},
			"b": {Name: "b"},
			"c": {Name: "c"},
		}
		c := query.Characteristics{QueryType: query.TypeTechnical, Complexity: query.ComplexityComplex, HasOperators: true}
		rec := query.Recommend(c, three, []string{"a", "b", "c"})
		Expect(rec.Provider).To(Equal("a"))
		Expect(rec.Confidence).To(BeNumerically("<=", 100))
		Expect(rec.Alternatives).To(HaveLen(2))
		Expect(rec.Alternatives).To(ConsistOf("b", "c"))
	})

	It("matches a good_with_domains wildcard only once even with multiple mentions", func() {
		wildcard := map[string]query.Descriptor{
			"brave": {Name: "brave", GoodWithDomains: []string{"*"}},
		}
		c := query.Characteristics{DomainsMentioned: []string{"example.com", "other.com"}}
		scored := query.Score(c, wildcard, []string{"brave"})[0]
		count := 0
		for _, r := range scored.Reasons {
			if r == "Good with example.com" {
				count++
			}
		}
		Expect(count).To(Equal(1))
	})
})

var _ = Describe("CategoryProviders", func() {
	It("partitions the static table by category", func() {
		search := query.CategoryProviders("search")
		ai := query.CategoryProviders("ai_response")
		Expect(search).To(ContainElements("tavily", "kagi", "brave", "duckduckgo"))
		Expect(ai).To(ContainElements("perplexity", "claude_search"))
	})
})
