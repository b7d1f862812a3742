package query

// StaticDescriptors is the fixed capability table for the standard
// back-ends. Values here drive recommendation scoring and are not
// runtime-tunable; only enablement, priority, and ordering are
// configurable.
var StaticDescriptors = map[string]Descriptor{
	"tavily": {
		Name:               "tavily",
		Category:           "search",
		StrongFor:          map[Type]bool{TypeAcademic: true, TypeCurrentEvents: true},
		RecencyScore:       0.9,
		ComplexityHandling: 0.7,
		OperatorSupport:    0.3,
		GoodWithDomains:    []string{"arxiv.org", "scholar.google.com"},
		AIPowered:          true,
		PrivacyFocused:     false,
		NoAds:              true,
		FastResponse:       false,
	},
	"kagi": {
		Name:               "kagi",
		Category:           "search",
		StrongFor:          map[Type]bool{TypeTechnical: true, TypeCode: true},
		RecencyScore:       0.5,
		ComplexityHandling: 0.8,
		OperatorSupport:    0.9,
		GoodWithDomains:    []string{"github.com", "stackoverflow.com"},
		AIPowered:          false,
		PrivacyFocused:     true,
		NoAds:              true,
		FastResponse:       true,
	},
	"brave": {
		Name:               "brave",
		Category:           "search",
		StrongFor:          map[Type]bool{TypeGeneral: true, TypeLocal: true, TypeProduct: true},
		RecencyScore:       0.6,
		ComplexityHandling: 0.5,
		OperatorSupport:    0.6,
		GoodWithDomains:    []string{"*"},
		AIPowered:          false,
		PrivacyFocused:     true,
		NoAds:              false,
		FastResponse:       true,
	},
	"duckduckgo": {
		Name:               "duckduckgo",
		Category:           "search",
		StrongFor:          map[Type]bool{TypeFactual: true, TypeDefinition: true},
		RecencyScore:       0.4,
		ComplexityHandling: 0.4,
		OperatorSupport:    0.5,
		GoodWithDomains:    []string{"*"},
		AIPowered:          false,
		PrivacyFocused:     true,
		NoAds:              true,
		FastResponse:       true,
	},
	"perplexity": {
		Name:               "perplexity",
		Category:           "ai_response",
		StrongFor:          map[Type]bool{TypeAcademic: true, TypeCurrentEvents: true, TypeTechnical: true},
		RecencyScore:       0.85,
		ComplexityHandling: 0.95,
		OperatorSupport:    0.2,
		GoodWithDomains:    nil,
		AIPowered:          true,
		PrivacyFocused:     false,
		NoAds:              true,
		FastResponse:       false,
	},
	"claude_search": {
		Name:               "claude_search",
		Category:           "ai_response",
		StrongFor:          map[Type]bool{TypeTechnical: true, TypeCode: true, TypeHowTo: true},
		RecencyScore:       0.6,
		ComplexityHandling: 0.95,
		OperatorSupport:    0.1,
		GoodWithDomains:    nil,
		AIPowered:          true,
		PrivacyFocused:     false,
		NoAds:              true,
		FastResponse:       false,
	},
}

// CategoryProviders returns the names of the standard providers
// registered under category ("search" or "ai_response").
func CategoryProviders(category string) []string {
	var names []string
	for name, d := range StaticDescriptors {
		if d.Category == category {
			names = append(names, name)
		}
	}
	return names
}
