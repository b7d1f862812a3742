package clock_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
)

func TestClock(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Clock Suite")
}

var _ = Describe("Fake Clock", func() {
	It("returns the pinned time", func() {
		t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c := clock.NewFake(t0)
		Expect(c.Now()).To(Equal(t0))
	})

	It("advances by a duration", func() {
		t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c := clock.NewFake(t0)
		c.Advance(90 * time.Minute)
		Expect(c.Now()).To(Equal(t0.Add(90 * time.Minute)))
	})

	It("can be set directly", func() {
		c := clock.NewFake(time.Now())
		t1 := time.Date(2030, 5, 5, 0, 0, 0, 0, time.UTC)
		c.Set(t1)
		Expect(c.Now()).To(Equal(t1))
	})
})

var _ = Describe("Real Clock", func() {
	It("tracks wall-clock time", func() {
		c := clock.Real{}
		before := time.Now()
		now := c.Now()
		Expect(now).To(BeTemporally(">=", before))
	})
})
