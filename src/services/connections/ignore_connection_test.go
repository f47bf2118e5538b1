package connections_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

var _ = Describe("IgnoreConnection", func() {
	var f fixture

	BeforeEach(func() {
		f = newFixture("u3", "u4")
	})

	It("moves the request from pending to ignored without deleting it", func() {
		// ARRANGE
		Expect(f.service.RequestConnection(f.ctx, "u3", "u4")).To(Succeed())

		// ACT
		err := f.service.IgnoreConnection(f.ctx, "u4", "u3")

		// ASSERT
		Expect(err).NotTo(HaveOccurred())

		pending, err := f.service.ListPending(f.ctx, "u4")
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())

		ignored, err := f.service.ListIgnored(f.ctx, "u4")
		Expect(err).NotTo(HaveOccurred())
		Expect(ignored).To(HaveLen(1))
		Expect(ignored[0].RequesterID).To(Equal("u3"))
		Expect(ignored[0].IgnoredAt).NotTo(BeNil())

		edge := f.edge("u3", "u4")
		Expect(edge).NotTo(BeNil())
		Expect(edge.State).To(Equal(entities.EdgeStateIgnored))
	})

	It("no longer reports the request as pending on either side", func() {
		// ARRANGE
		Expect(f.service.RequestConnection(f.ctx, "u3", "u4")).To(Succeed())

		// ACT
		Expect(f.service.IgnoreConnection(f.ctx, "u4", "u3")).To(Succeed())

		// ASSERT
		Expect(f.status("u3", "u4")).To(Equal(domain.StatusNone))
		Expect(f.status("u4", "u3")).To(Equal(domain.StatusNone))
	})

	It("fails when there is no pending request", func() {
		Expect(f.service.IgnoreConnection(f.ctx, "u4", "u3")).To(MatchError(domain.ErrNoPendingRequest))
	})

	It("fails when the request was already ignored", func() {
		// ARRANGE
		Expect(f.service.RequestConnection(f.ctx, "u3", "u4")).To(Succeed())
		Expect(f.service.IgnoreConnection(f.ctx, "u4", "u3")).To(Succeed())

		// ACT / ASSERT
		Expect(f.service.IgnoreConnection(f.ctx, "u4", "u3")).To(MatchError(domain.ErrNoPendingRequest))
	})

	It("fails for a connected pair", func() {
		// ARRANGE
		f.connect("u3", "u4")

		// ACT / ASSERT
		Expect(f.service.IgnoreConnection(f.ctx, "u4", "u3")).To(MatchError(domain.ErrNoPendingRequest))
		Expect(f.status("u3", "u4")).To(Equal(domain.StatusConnected))
	})
})
