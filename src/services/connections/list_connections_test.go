package connections_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/repositories"
	"socialgraph/src/test_artefacts/stubs"
)

var _ = Describe("List operations", func() {
	var f fixture

	BeforeEach(func() {
		f = newFixture("me", "ana", "bia", "caio", "duda")
	})

	Describe("ListConnections", func() {
		It("returns connections newest first with the counterpart profile", func() {
			// ARRANGE
			f.connect("ana", "me")
			f.connect("me", "bia")
			f.connect("caio", "me")

			// ACT
			views, err := f.service.ListConnections(f.ctx, "me")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(3))
			Expect([]string{views[0].PeerID, views[1].PeerID, views[2].PeerID}).To(Equal([]string{"caio", "bia", "ana"}))
			Expect(views[0].Profile.ID).To(Equal("caio"))
			Expect(views[0].State).To(Equal(string(entities.EdgeStateConnected)))
			Expect(views[0].ConnectedAt).To(BeTemporally(">", views[1].ConnectedAt))
		})

		It("reports the same connectedAt on both sides", func() {
			// ARRANGE
			f.connect("ana", "me")

			// ACT
			mine, err := f.service.ListConnections(f.ctx, "me")
			Expect(err).NotTo(HaveOccurred())
			theirs, err := f.service.ListConnections(f.ctx, "ana")
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(mine[0].ConnectedAt).To(Equal(theirs[0].ConnectedAt))
		})

		It("leaves out pending and ignored edges", func() {
			// ARRANGE
			f.connect("ana", "me")
			Expect(f.service.RequestConnection(f.ctx, "me", "bia")).To(Succeed())
			Expect(f.service.RequestConnection(f.ctx, "caio", "me")).To(Succeed())
			Expect(f.service.IgnoreConnection(f.ctx, "me", "caio")).To(Succeed())

			// ACT
			views, err := f.service.ListConnections(f.ctx, "me")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
			Expect(views[0].PeerID).To(Equal("ana"))
		})

		It("drops connections whose profile cannot be resolved", func() {
			// ARRANGE
			f.connect("ana", "me")
			f.connect("bia", "me")
			f.profiles.FailFor("bia", domain.ErrProfileNotFound)

			// ACT
			views, err := f.service.ListConnections(f.ctx, "me")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
			Expect(views[0].PeerID).To(Equal("ana"))
		})

		It("returns an empty list for a user without connections", func() {
			views, err := f.service.ListConnections(f.ctx, "duda")
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(BeEmpty())
		})

		It("reports store unavailable when the reverse index fails", func() {
			// ARRANGE
			f.store.FailOn(repositories.OpQueryByPeer, errors.New("replica down"))

			// ACT
			_, err := f.service.ListConnections(f.ctx, "me")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrStoreUnavailable))
		})
	})

	Describe("ListPending", func() {
		It("lists incoming pending requests newest first", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "ana", "me")).To(Succeed())
			Expect(f.service.RequestConnection(f.ctx, "bia", "me")).To(Succeed())
			Expect(f.service.RequestConnection(f.ctx, "me", "caio")).To(Succeed())

			// ACT
			views, err := f.service.ListPending(f.ctx, "me")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(2))
			Expect(views[0].RequesterID).To(Equal("bia"))
			Expect(views[0].RequestID).To(Equal("bia-me"))
			Expect(views[0].State).To(Equal(string(entities.EdgeStatePending)))
			Expect(views[1].RequesterID).To(Equal("ana"))
		})
	})

	Describe("ListOutgoing", func() {
		It("lists sent requests that are pending or ignored with their status", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "me", "ana")).To(Succeed())
			Expect(f.service.RequestConnection(f.ctx, "me", "bia")).To(Succeed())
			Expect(f.service.IgnoreConnection(f.ctx, "bia", "me")).To(Succeed())
			f.connect("me", "caio")

			// ACT
			views, err := f.service.ListOutgoing(f.ctx, "me")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(2))
			Expect(views[0].RecipientID).To(Equal("bia"))
			Expect(views[0].State).To(Equal(string(entities.EdgeStateIgnored)))
			Expect(views[1].RecipientID).To(Equal("ana"))
			Expect(views[1].State).To(Equal(string(entities.EdgeStatePending)))
		})

		It("reports store unavailable when the owner query fails", func() {
			f.store.FailOn(repositories.OpQueryByOwner, errors.New("timeout"))

			_, err := f.service.ListOutgoing(f.ctx, "me")
			Expect(err).To(MatchError(domain.ErrStoreUnavailable))
		})
	})

	Describe("ListIgnored", func() {
		It("sorts by the time the request was ignored", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "ana", "me")).To(Succeed())
			Expect(f.service.RequestConnection(f.ctx, "bia", "me")).To(Succeed())
			// ana pediu antes, mas foi ignorada por último
			Expect(f.service.IgnoreConnection(f.ctx, "me", "bia")).To(Succeed())
			Expect(f.service.IgnoreConnection(f.ctx, "me", "ana")).To(Succeed())

			// ACT
			views, err := f.service.ListIgnored(f.ctx, "me")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(2))
			Expect(views[0].RequesterID).To(Equal("ana"))
			Expect(views[1].RequesterID).To(Equal("bia"))
			Expect(*views[0].IgnoredAt).To(BeTemporally(">", *views[1].IgnoredAt))
		})

		It("falls back to the request time for rows without updatedAt", func() {
			// ARRANGE
			base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
			Expect(f.store.Put(f.ctx, stubs.NewEdgeStub().WithOwner("ana").WithPeer("me").
				WithState(entities.EdgeStateIgnored).WithCreatedAt(base).Get())).To(Succeed())
			Expect(f.store.Put(f.ctx, stubs.NewEdgeStub().WithOwner("bia").WithPeer("me").
				WithState(entities.EdgeStateIgnored).WithCreatedAt(base.Add(time.Hour)).Get())).To(Succeed())

			// ACT
			views, err := f.service.ListIgnored(f.ctx, "me")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(2))
			Expect(views[0].RequesterID).To(Equal("bia"))
			Expect(views[0].IgnoredAt).To(BeNil())
		})
	})

	Describe("happy path scenario", func() {
		It("ends with both users listing each other", func() {
			f = newFixture("u1", "u2")

			Expect(f.service.RequestConnection(f.ctx, "u1", "u2")).To(Succeed())
			Expect(f.status("u1", "u2")).To(Equal(domain.StatusPendingSent))
			Expect(f.service.AcceptConnection(f.ctx, "u2", "u1")).To(Succeed())
			Expect(f.status("u1", "u2")).To(Equal(domain.StatusConnected))

			forU1, err := f.service.ListConnections(f.ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(forU1).To(ContainElement(HaveField("PeerID", "u2")))

			forU2, err := f.service.ListConnections(f.ctx, "u2")
			Expect(err).NotTo(HaveOccurred())
			Expect(forU2).To(ContainElement(HaveField("PeerID", "u1")))
		})
	})
})
