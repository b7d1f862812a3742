package errors_test

import (
	"errors"
	"net/http"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	searcherrors "github.com/jordigilh/omnisearch-orchestrator/internal/errors"
)

func TestErrors(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Error Taxonomy Suite")
}

var _ = Describe("SearchError", func() {
	It("creates an error with the default status code", func() {
		err := searcherrors.New(searcherrors.ErrorTypeRateLimit, "tavily", "quota hit")

		Expect(err.Type).To(Equal(searcherrors.ErrorTypeRateLimit))
		Expect(err.Provider).To(Equal("tavily"))
		Expect(err.StatusCode).To(Equal(http.StatusTooManyRequests))
		Expect(err.Error()).To(Equal("RATE_LIMIT: quota hit"))
	})

	It("includes details in the error string when present", func() {
		err := searcherrors.New(searcherrors.ErrorTypeProviderError, "kagi", "upstream 500").WithDetails("retry-after missing")
		Expect(err.Error()).To(Equal("PROVIDER_ERROR: upstream 500 (retry-after missing)"))
	})

	It("wraps an underlying cause", func() {
		cause := errors.New("dial tcp: timeout")
		err := searcherrors.Wrapf(cause, searcherrors.ErrorTypeTimeout, "brave", "attempt %d timed out", 2)

		Expect(err.Message).To(Equal("attempt 2 timed out"))
		Expect(err.Unwrap()).To(Equal(cause))
	})

	DescribeTable("maps every error type to an HTTP-shaped status code",
		func(typ searcherrors.ErrorType, status int) {
			err := searcherrors.New(typ, "p", "m")
			Expect(err.StatusCode).To(Equal(status))
		},
		Entry("invalid input", searcherrors.ErrorTypeInvalidInput, http.StatusBadRequest),
		Entry("auth", searcherrors.ErrorTypeAuthentication, http.StatusUnauthorized),
		Entry("rate limit", searcherrors.ErrorTypeRateLimit, http.StatusTooManyRequests),
		Entry("credit exhausted", searcherrors.ErrorTypeCreditExhausted, http.StatusPaymentRequired),
		Entry("quota exceeded", searcherrors.ErrorTypeQuotaExceeded, http.StatusTooManyRequests),
		Entry("provider error", searcherrors.ErrorTypeProviderError, http.StatusBadGateway),
		Entry("api error", searcherrors.ErrorTypeAPIError, http.StatusInternalServerError),
		Entry("timeout", searcherrors.ErrorTypeTimeout, http.StatusGatewayTimeout),
		Entry("internal", searcherrors.ErrorTypeInternal, http.StatusInternalServerError),
	)

	Describe("IsType / GetType / GetStatusCode", func() {
		It("identifies SearchError types", func() {
			err := searcherrors.New(searcherrors.ErrorTypeAuthentication, "p", "bad key")
			Expect(searcherrors.IsType(err, searcherrors.ErrorTypeAuthentication)).To(BeTrue())
			Expect(searcherrors.IsType(err, searcherrors.ErrorTypeTimeout)).To(BeFalse())
		})

		It("falls back to INTERNAL for plain errors", func() {
			plain := errors.New("boom")
			Expect(searcherrors.GetType(plain)).To(Equal(searcherrors.ErrorTypeInternal))
			Expect(searcherrors.GetStatusCode(plain)).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("IsRetryable", func() {
		It("refuses to retry rate limit, invalid input, and auth errors", func() {
			Expect(searcherrors.IsRetryable(searcherrors.New(searcherrors.ErrorTypeRateLimit, "p", "m"))).To(BeFalse())
			Expect(searcherrors.IsRetryable(searcherrors.New(searcherrors.ErrorTypeInvalidInput, "p", "m"))).To(BeFalse())
			Expect(searcherrors.IsRetryable(searcherrors.New(searcherrors.ErrorTypeAuthentication, "p", "m"))).To(BeFalse())
		})

		It("allows retrying transient and provider errors", func() {
			Expect(searcherrors.IsRetryable(searcherrors.New(searcherrors.ErrorTypeProviderError, "p", "m"))).To(BeTrue())
			Expect(searcherrors.IsRetryable(searcherrors.New(searcherrors.ErrorTypeTimeout, "p", "m"))).To(BeTrue())
		})
	})

	Describe("Classify", func() {
		It("reclassifies an API_ERROR mentioning credit/quota/limit as CREDIT_EXHAUSTED", func() {
			err := searcherrors.New(searcherrors.ErrorTypeAPIError, "kagi", "monthly quota exceeded")
			classified := searcherrors.Classify(err)
			Expect(classified.Type).To(Equal(searcherrors.ErrorTypeCreditExhausted))
		})

		It("reclassifies an API_ERROR mentioning invalid credentials as AUTHENTICATION_ERROR", func() {
			err := searcherrors.New(searcherrors.ErrorTypeAPIError, "brave", "401 Unauthorized")
			classified := searcherrors.Classify(err)
			Expect(classified.Type).To(Equal(searcherrors.ErrorTypeAuthentication))
		})

		It("leaves an unrelated API_ERROR unclassified", func() {
			err := searcherrors.New(searcherrors.ErrorTypeAPIError, "brave", "unexpected response shape")
			classified := searcherrors.Classify(err)
			Expect(classified.Type).To(Equal(searcherrors.ErrorTypeAPIError))
		})
	})

	Describe("SafeErrorMessage", func() {
		It("passes validation messages through", func() {
			err := searcherrors.New(searcherrors.ErrorTypeInvalidInput, "p", "limit must be between 1 and 50")
			Expect(searcherrors.SafeErrorMessage(err)).To(Equal("limit must be between 1 and 50"))
		})

		It("returns a canned message for other types", func() {
			err := searcherrors.New(searcherrors.ErrorTypeProviderError, "p", "internal trace xyz")
			Expect(searcherrors.SafeErrorMessage(err)).To(Equal("The provider encountered an internal error"))
		})

		It("returns a generic message for non-SearchError", func() {
			Expect(searcherrors.SafeErrorMessage(errors.New("panic recovered"))).To(Equal("An unexpected error occurred"))
		})
	})

	Describe("LogFields", func() {
		It("includes type, status, details, and cause", func() {
			cause := errors.New("connection reset")
			err := searcherrors.Wrap(cause, searcherrors.ErrorTypeProviderError, "kagi", "search failed").WithDetails("attempt 2")
			fields := searcherrors.LogFields(err)

			Expect(fields).To(HaveKeyWithValue("error_type", "PROVIDER_ERROR"))
			Expect(fields).To(HaveKeyWithValue("provider", "kagi"))
			Expect(fields).To(HaveKeyWithValue("error_details", "attempt 2"))
			Expect(fields).To(HaveKeyWithValue("underlying_error", "connection reset"))
		})

		It("omits optional keys when absent", func() {
			err := searcherrors.New(searcherrors.ErrorTypeTimeout, "", "deadline exceeded")
			fields := searcherrors.LogFields(err)

			Expect(fields).NotTo(HaveKey("provider"))
			Expect(fields).NotTo(HaveKey("error_details"))
			Expect(fields).NotTo(HaveKey("underlying_error"))
		})
	})
})
