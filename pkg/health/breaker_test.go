package health_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
)

var _ = Describe("NewBreaker", func() {
	It("trips after the manager's configured consecutive-failure threshold", func() {
		fc := clock.NewFake(time.Now())
		mgr := health.NewManager(fc, 2, 30_000, nil, nil)
		breaker := health.NewBreaker[string](mgr, "kagi")

		fail := func() (string, error) { return "", errors.New("boom") }

		_, err1 := breaker.Execute(fail)
		Expect(err1).To(HaveOccurred())

		_, err2 := breaker.Execute(fail)
		Expect(err2).To(HaveOccurred())

		_, err3 := breaker.Execute(func() (string, error) { return "ok", nil })
		Expect(err3).To(HaveOccurred())
	})
})
