package health_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	searcherrors "github.com/jordigilh/omnisearch-orchestrator/internal/errors"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
)

func TestHealth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Health Manager Suite")
}

var _ = Describe("Manager", func() {
	var (
		fc      *clock.Fake
		mgr     *health.Manager
		mutated int
	)

	BeforeEach(func() {
		fc = clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		mutated = 0
		mgr = health.NewManager(fc, 3, 60_000, nil, func() { mutated++ })
	})

	It("treats a never-seen provider as available", func() {
		Expect(mgr.IsAvailable("tavily")).To(BeTrue())
	})

	It("schedules a snapshot save on every mutation", func() {
		mgr.RecordSuccess("tavily")
		mgr.RecordFailure("tavily", searcherrors.New(searcherrors.ErrorTypeProviderError, "tavily", "boom"), nil)
		Expect(mutated).To(Equal(2))
	})

	Describe("rate limit cooldown", func() {
		It("is unavailable until the server-provided reset time, then available", func() {
			reset := fc.Now().Add(10 * time.Minute)
			mgr.RecordFailure("tavily", searcherrors.New(searcherrors.ErrorTypeRateLimit, "tavily", "quota"), &reset)

			fc.Set(reset.Add(-time.Second))
			Expect(mgr.IsAvailable("tavily")).To(BeFalse())

			fc.Set(reset.Add(time.Second))
			Expect(mgr.IsAvailable("tavily")).To(BeTrue())
		})

		It("defaults to a 1 hour cooldown absent a server reset time", func() {
			mgr.RecordFailure("brave", searcherrors.New(searcherrors.ErrorTypeRateLimit, "brave", "quota"), nil)
			fc.Advance(59 * time.Minute)
			Expect(mgr.IsAvailable("brave")).To(BeFalse())
			fc.Advance(2 * time.Minute)
			Expect(mgr.IsAvailable("brave")).To(BeTrue())
		})
	})

	Describe("credit exhaustion cooldown", func() {
		It("recovers after 24 hours without resetting failure_count", func() {
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeCreditExhausted, "kagi", "plan exhausted"), nil)
			Expect(mgr.IsAvailable("kagi")).To(BeFalse())

			fc.Advance(23 * time.Hour)
			Expect(mgr.IsAvailable("kagi")).To(BeFalse())

			fc.Advance(2 * time.Hour)
			Expect(mgr.IsAvailable("kagi")).To(BeTrue())
			Expect(mgr.Snapshot("kagi").FailureCount).To(Equal(1))
		})
	})

	Describe("authentication failures", func() {
		It("disables the provider with no timed recovery", func() {
			mgr.RecordFailure("tavily", searcherrors.New(searcherrors.ErrorTypeAuthentication, "tavily", "bad key"), nil)
			fc.Advance(48 * time.Hour)
			Expect(mgr.IsAvailable("tavily")).To(BeFalse())
		})

		It("is cleared only by a manual reset", func() {
			mgr.RecordFailure("tavily", searcherrors.New(searcherrors.ErrorTypeAuthentication, "tavily", "bad key"), nil)
			mgr.Reset("tavily")
			Expect(mgr.IsAvailable("tavily")).To(BeTrue())
		})
	})

	Describe("circuit breaker threshold", func() {
		It("does not open on the (threshold-1)th consecutive failure", func() {
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			Expect(mgr.IsAvailable("kagi")).To(BeTrue())
		})

		It("opens on exactly the threshold-th consecutive failure", func() {
			for i := 0; i < 3; i++ {
				mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			}
			Expect(mgr.IsAvailable("kagi")).To(BeFalse())
		})

		It("resets the consecutive count on an intervening success", func() {
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			mgr.RecordSuccess("kagi")
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			Expect(mgr.IsAvailable("kagi")).To(BeTrue())
		})

		It("clears the breaker and failure_count once the open window lapses", func() {
			for i := 0; i < 3; i++ {
				mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "500"), nil)
			}
			fc.Advance(61 * time.Second)
			Expect(mgr.IsAvailable("kagi")).To(BeTrue())
			Expect(mgr.Snapshot("kagi").FailureCount).To(Equal(0))
		})
	})

	Describe("API_ERROR reclassification", func() {
		It("treats a quota-mentioning API_ERROR as credit exhaustion", func() {
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeAPIError, "kagi", "monthly quota exceeded"), nil)
			Expect(mgr.IsAvailable("kagi")).To(BeFalse())
			fc.Advance(25 * time.Hour)
			Expect(mgr.IsAvailable("kagi")).To(BeTrue())
		})

		It("treats an unrelated API_ERROR as a plain provider failure", func() {
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeAPIError, "kagi", "unexpected response shape"), nil)
			Expect(mgr.Snapshot("kagi").FailureCount).To(Equal(1))
			Expect(mgr.IsAvailable("kagi")).To(BeTrue())
		})
	})

	Describe("AvailableSet", func() {
		It("intersects priority order with availability and enablement", func() {
			mgr.RecordFailure("kagi", searcherrors.New(searcherrors.ErrorTypeAuthentication, "kagi", "bad key"), nil)
			enabled := map[string]bool{"tavily": true, "kagi": true, "brave": false}
			got := mgr.AvailableSet([]string{"tavily", "kagi", "brave"}, func(name string) bool { return enabled[name] })
			Expect(got).To(Equal([]string{"tavily"}))
		})
	})

	Describe("failure_count halving (FAILURE_RESET_TIME)", func() {
		It("halves failure_count on read when the last success was within the window", func() {
			mgr.RecordSuccess("brave")
			mgr.RecordFailure("brave", searcherrors.New(searcherrors.ErrorTypeProviderError, "brave", "500"), nil)
			mgr.RecordFailure("brave", searcherrors.New(searcherrors.ErrorTypeProviderError, "brave", "500"), nil)
			fc.Advance(1 * time.Minute)
			Expect(mgr.Snapshot("brave").FailureCount).To(Equal(1))
		})
	})
})
