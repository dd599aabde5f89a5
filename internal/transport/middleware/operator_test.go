package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/moola-sync/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Middleware Suite")
}

var _ = Describe("Operator Auth", func() {
	var (
		handler  http.Handler
		recorder *httptest.ResponseRecorder
		reached  bool
	)

	BeforeEach(func() {
		reached = false
		recorder = httptest.NewRecorder()
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		})
		handler = middleware.OperatorAuth("correct-operator-key")(next)
	})

	It("should pass through with the right key", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
		req.Header.Set("X-Api-Key", "correct-operator-key")
		handler.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})

	It("should reject a missing key", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
		handler.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})

	It("should reject a wrong key", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
		req.Header.Set("X-Api-Key", "wrong-key")
		handler.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})
})
