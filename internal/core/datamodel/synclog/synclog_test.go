package synclog_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
)

func TestSyncLogDatamodel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SyncLog Datamodel Suite")
}

var _ = Describe("Truncate", func() {
	It("should return short messages untouched", func() {
		Expect(synclog.Truncate("all good")).To(Equal("all good"))
	})

	It("should clamp long messages to the limit", func() {
		long := strings.Repeat("x", synclog.MaxMessageLen+100)
		Expect(synclog.Truncate(long)).To(HaveLen(synclog.MaxMessageLen))
	})

	It("should not split a multi-byte rune at the cut", func() {
		long := strings.Repeat("€", synclog.MaxMessageLen)
		got := synclog.Truncate(long)

		Expect(len(got)).To(BeNumerically("<=", synclog.MaxMessageLen))
		Expect(utf8.ValidString(got)).To(BeTrue())
		Expect(strings.HasSuffix(got, "€")).To(BeTrue())
	})
})
