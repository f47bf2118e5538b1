package connections_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/repositories"
	"socialgraph/src/services/connections"
	"socialgraph/src/services/profiles"

	"go.uber.org/zap"
)

var _ = Describe("AcceptConnection", func() {
	var f fixture

	BeforeEach(func() {
		f = newFixture("u1", "u2", "u3")
	})

	When("there is a pending request", func() {
		It("connects both directions", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "u1", "u2")).To(Succeed())

			// ACT
			err := f.service.AcceptConnection(f.ctx, "u2", "u1")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(f.status("u1", "u2")).To(Equal(domain.StatusConnected))
			Expect(f.status("u2", "u1")).To(Equal(domain.StatusConnected))

			request := f.edge("u1", "u2")
			Expect(request.State).To(Equal(entities.EdgeStateConnected))
			Expect(request.UpdatedAt).NotTo(BeNil())

			reverse := f.edge("u2", "u1")
			Expect(reverse.State).To(Equal(entities.EdgeStateConnected))
			Expect(reverse.UpdatedAt).To(BeNil())
		})

		It("lists the connection for both users", func() {
			// ARRANGE
			f.connect("u1", "u2")

			// ACT
			forU1, err1 := f.service.ListConnections(f.ctx, "u1")
			forU2, err2 := f.service.ListConnections(f.ctx, "u2")

			// ASSERT
			Expect(err1).NotTo(HaveOccurred())
			Expect(err2).NotTo(HaveOccurred())
			Expect(forU1).To(HaveLen(1))
			Expect(forU1[0].PeerID).To(Equal("u2"))
			Expect(forU2).To(HaveLen(1))
			Expect(forU2[0].PeerID).To(Equal("u1"))
		})

		It("emits an accepted event", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "u1", "u2")).To(Succeed())

			// ACT
			Expect(f.service.AcceptConnection(f.ctx, "u2", "u1")).To(Succeed())

			// ASSERT
			Expect(f.notifier.Types()).To(Equal([]domain.ConnectionEventType{
				domain.EventConnectionRequested,
				domain.EventConnectionAccepted,
			}))
		})
	})

	When("there is nothing to accept", func() {
		It("fails without a request", func() {
			Expect(f.service.AcceptConnection(f.ctx, "u2", "u1")).To(MatchError(domain.ErrNoPendingRequest))
		})

		It("fails when the caller is the requester", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "u1", "u2")).To(Succeed())

			// ACT
			err := f.service.AcceptConnection(f.ctx, "u1", "u2")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrNoPendingRequest))
			Expect(f.status("u1", "u2")).To(Equal(domain.StatusPendingSent))
		})

		It("fails for an ignored request", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "u1", "u2")).To(Succeed())
			Expect(f.service.IgnoreConnection(f.ctx, "u2", "u1")).To(Succeed())

			// ACT
			err := f.service.AcceptConnection(f.ctx, "u2", "u1")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrNoPendingRequest))
			Expect(f.edge("u2", "u1")).To(BeNil())
		})

		It("fails when both sides are already connected", func() {
			// ARRANGE
			f.connect("u1", "u2")

			// ACT
			err := f.service.AcceptConnection(f.ctx, "u2", "u1")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrNoPendingRequest))
		})
	})

	When("the reverse edge write fails after the first write", func() {
		var (
			store   *reverseWriteFailingStore
			service *connections.ConnectionService
		)

		BeforeEach(func() {
			store = &reverseWriteFailingStore{MemoryEdgeRepository: f.store, failOwner: "u2"}
			service = connections.NewConnectionService(
				zap.NewNop(),
				store,
				store,
				profiles.NewEnricher(zap.NewNop(), f.profiles, 2),
				f.notifier,
			).WithClock(newFakeClock().Now)

			Expect(service.RequestConnection(f.ctx, "u1", "u2")).To(Succeed())
		})

		It("retries, reports success and leaves a self-healing asymmetric state", func() {
			// ACT
			err := service.AcceptConnection(f.ctx, "u2", "u1")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(store.attempts).To(Equal(3))
			Expect(f.edge("u2", "u1")).To(BeNil())
			Expect(f.edge("u1", "u2").State).To(Equal(entities.EdgeStateConnected))

			// Leituras derivam das duas direções
			Expect(f.status("u1", "u2")).To(Equal(domain.StatusConnected))
			Expect(f.status("u2", "u1")).To(Equal(domain.StatusConnected))

			listed, listErr := service.ListConnections(f.ctx, "u2")
			Expect(listErr).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].PeerID).To(Equal("u1"))
		})

		It("repairs the missing edge when the accept is retried", func() {
			// ARRANGE
			Expect(service.AcceptConnection(f.ctx, "u2", "u1")).To(Succeed())
			store.Heal()

			// ACT
			err := service.AcceptConnection(f.ctx, "u2", "u1")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			reverse := f.edge("u2", "u1")
			Expect(reverse).NotTo(BeNil())
			Expect(reverse.State).To(Equal(entities.EdgeStateConnected))

			Expect(service.AcceptConnection(f.ctx, "u2", "u1")).To(MatchError(domain.ErrNoPendingRequest))
		})
	})

	When("the store fails", func() {
		It("reports store unavailable when the first write fails", func() {
			// ARRANGE
			Expect(f.service.RequestConnection(f.ctx, "u1", "u2")).To(Succeed())
			f.store.FailOn(repositories.OpPut, errors.New("timeout"))

			// ACT
			err := f.service.AcceptConnection(f.ctx, "u2", "u1")

			// ASSERT
			Expect(err).To(MatchError(domain.ErrStoreUnavailable))
			f.store.FailOn(repositories.OpPut, nil)
			Expect(f.status("u2", "u1")).To(Equal(domain.StatusPendingReceived))
		})

		It("reports store unavailable when the read fails", func() {
			// ARRANGE
			f.store.FailOn(repositories.OpGet, errors.New("timeout"))

			// ACT / ASSERT
			Expect(f.service.AcceptConnection(f.ctx, "u2", "u1")).To(MatchError(domain.ErrStoreUnavailable))
		})
	})
})
