package consumers_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"socialgraph/src/adapters/kafka/consumers"
	"socialgraph/src/domain"
	"socialgraph/src/infra/kafka"

	"go.uber.org/zap"
)

type recordingInvalidator struct {
	calls [][]string
	err   error
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, ids ...string) error {
	r.calls = append(r.calls, ids)
	return r.err
}

func profileMessage(userID string, eventType domain.ProfileEventType) kafka.Message {
	value, _ := json.Marshal(domain.ProfileEvent{ID: "evt-" + userID, Type: eventType, UserID: userID})
	return kafka.Message{Key: userID, Value: value}
}

var _ = Describe("ProfileCacheConsumer", func() {
	var (
		ctx         context.Context
		invalidator *recordingInvalidator
		consumer    *consumers.ProfileCacheConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		invalidator = &recordingInvalidator{}
		consumer = consumers.NewProfileCacheConsumer(zap.NewNop(), invalidator)
	})

	It("invalidates each changed profile once per batch", func() {
		// ARRANGE
		messages := []kafka.Message{
			profileMessage("alice", domain.EventProfileUpdated),
			profileMessage("bob", domain.EventProfileDeleted),
			profileMessage("alice", domain.EventProfileUpdated),
		}

		// ACT
		err := consumer.HandleMessages(ctx, messages)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(invalidator.calls).To(Equal([][]string{{"alice", "bob"}}))
	})

	It("skips unknown types, poison messages and events without a user", func() {
		// ARRANGE
		messages := []kafka.Message{
			profileMessage("alice", "profile.viewed"),
			{Key: "x", Value: []byte("{broken")},
			profileMessage("", domain.EventProfileUpdated),
		}

		// ACT
		err := consumer.HandleMessages(ctx, messages)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(invalidator.calls).To(BeEmpty())
	})

	It("fails the batch when the cache cannot be invalidated", func() {
		invalidator.err = errors.New("redis timeout")

		err := consumer.HandleMessages(ctx, []kafka.Message{profileMessage("alice", domain.EventProfileUpdated)})

		Expect(err).To(MatchError(invalidator.err))
	})
})
