package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "socialgraph/src/adapters/http"
	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/repositories"
	"socialgraph/src/services/connections"
	"socialgraph/src/services/events"
	"socialgraph/src/services/profiles"
	"socialgraph/src/test_artefacts/stubs"

	"go.uber.org/zap"
)

type apiFixture struct {
	handler  http.Handler
	sessions *api.SessionProvider
	edges    *repositories.MemoryEdgeRepository
	profiles *repositories.MemoryProfileRepository
}

func newAPIFixture(config api.ServerConfig, health ...api.HealthCheck) apiFixture {
	logger := zap.NewNop()
	edges := repositories.NewMemoryEdgeRepository()
	profileStore := repositories.NewMemoryProfileRepository(
		stubs.NewProfileStub().WithID("alice").WithName("Alice").WithEmail("alice@example.com").Get(),
		stubs.NewProfileStub().WithID("bob").WithName("Bob").Get(),
		stubs.NewProfileStub().WithID("carol").WithName("Carol").WithPrivacy(entities.PrivacyPrivate).Get(),
	)

	enricher := profiles.NewEnricher(logger, profileStore, 4)
	connectionService := connections.NewConnectionService(logger, edges, edges, enricher, events.NewLogNotifier(logger))
	profileService := profiles.NewProfileService(profileStore, connectionService)
	sessions := api.NewSessionProvider("test-secret", "socialgraph-test")

	server := api.NewServer(config, logger, connectionService, profileService, sessions, health...)

	return apiFixture{handler: server.Handler(), sessions: sessions, edges: edges, profiles: profileStore}
}

func (f apiFixture) token(user string) string {
	token, err := f.sessions.Issue(user, time.Hour)
	Expect(err).NotTo(HaveOccurred())
	return token
}

func (f apiFixture) do(method string, path string, user string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if user != "" {
		request.Header.Set("Authorization", "Bearer "+f.token(user))
	}

	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](recorder *httptest.ResponseRecorder) T {
	var body T
	Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
	return body
}

func errorCode(recorder *httptest.ResponseRecorder) string {
	return decode[api.ErrorResponse](recorder).Error.Code
}

var _ = Describe("Server", func() {
	var f apiFixture

	BeforeEach(func() {
		f = newAPIFixture(api.ServerConfig{RequestTimeout: 5 * time.Second})
	})

	Describe("authentication", func() {
		It("rejects requests without a bearer token", func() {
			recorder := f.do(http.MethodGet, "/v1/connections", "", "")

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(recorder)).To(Equal("UNAUTHENTICATED"))
		})

		It("rejects tokens signed with another secret", func() {
			// ARRANGE
			other := api.NewSessionProvider("another-secret", "socialgraph-test")
			token, _ := other.Issue("alice", time.Hour)
			request := httptest.NewRequest(http.MethodGet, "/v1/connections", nil)
			request.Header.Set("Authorization", "Bearer "+token)
			recorder := httptest.NewRecorder()

			// ACT
			f.handler.ServeHTTP(recorder, request)

			// ASSERT
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects expired tokens", func() {
			// ARRANGE
			token, _ := f.sessions.Issue("alice", -time.Minute)
			request := httptest.NewRequest(http.MethodGet, "/v1/connections", nil)
			request.Header.Set("Authorization", "Bearer "+token)
			recorder := httptest.NewRecorder()

			// ACT
			f.handler.ServeHTTP(recorder, request)

			// ASSERT
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("connection requests", func() {
		It("creates a request and reports it on both sides", func() {
			// ACT
			recorder := f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"bob"}`)

			// ASSERT
			Expect(recorder.Code).To(Equal(http.StatusCreated))
			Expect(decode[api.MessageResponse](recorder).Message).To(Equal("connection request sent"))

			sent := decode[api.StatusResponse](f.do(http.MethodGet, "/v1/connections/status/bob", "alice", ""))
			received := decode[api.StatusResponse](f.do(http.MethodGet, "/v1/connections/status/alice", "bob", ""))
			Expect(sent.Status).To(Equal(domain.StatusPendingSent))
			Expect(received.Status).To(Equal(domain.StatusPendingReceived))
		})

		It("returns 409 for a duplicate request", func() {
			f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"bob"}`)

			recorder := f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"bob"}`)

			Expect(recorder.Code).To(Equal(http.StatusConflict))
			Expect(errorCode(recorder)).To(Equal("ALREADY_REQUESTED"))
		})

		It("returns 400 for a self connection", func() {
			recorder := f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"alice"}`)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(recorder)).To(Equal("SELF_CONNECTION"))
		})

		DescribeTable("rejects malformed bodies",
			func(body string) {
				recorder := f.do(http.MethodPost, "/v1/connections/requests", "alice", body)

				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
				Expect(errorCode(recorder)).To(Equal("VALIDATION_ERROR"))
			},
			Entry("empty user id", `{"userId":""}`),
			Entry("missing user id", `{}`),
			Entry("unknown field", `{"userId":"bob","note":"hi"}`),
			Entry("not json", `userId=bob`),
			Entry("too long", `{"userId":"`+strings.Repeat("x", 129)+`"}`),
		)
	})

	Describe("accept, ignore and disconnect", func() {
		BeforeEach(func() {
			Expect(f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"bob"}`).Code).To(Equal(http.StatusCreated))
		})

		It("accepts and lists the connection on both sides", func() {
			// ACT
			recorder := f.do(http.MethodPost, "/v1/connections/accept", "bob", `{"userId":"alice"}`)

			// ASSERT
			Expect(recorder.Code).To(Equal(http.StatusOK))

			list := decode[api.ListResponse[domain.ConnectionView]](f.do(http.MethodGet, "/v1/connections", "alice", ""))
			Expect(list.Count).To(Equal(1))
			Expect(list.Items[0].PeerID).To(Equal("bob"))
			Expect(list.Items[0].Profile.Name).To(Equal("Bob"))
		})

		It("returns 404 when there is nothing to accept", func() {
			recorder := f.do(http.MethodPost, "/v1/connections/accept", "alice", `{"userId":"bob"}`)

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(recorder)).To(Equal("NO_PENDING_REQUEST"))
		})

		It("moves an ignored request to the ignored list", func() {
			// ACT
			recorder := f.do(http.MethodPost, "/v1/connections/ignore", "bob", `{"userId":"alice"}`)

			// ASSERT
			Expect(recorder.Code).To(Equal(http.StatusOK))
			pending := decode[api.ListResponse[domain.IncomingRequestView]](f.do(http.MethodGet, "/v1/connections/pending", "bob", ""))
			ignored := decode[api.ListResponse[domain.IgnoredRequestView]](f.do(http.MethodGet, "/v1/connections/ignored", "bob", ""))
			Expect(pending.Count).To(BeZero())
			Expect(pending.Items).NotTo(BeNil())
			Expect(ignored.Count).To(Equal(1))
			Expect(ignored.Items[0].RequesterID).To(Equal("alice"))
		})

		It("lists pending and outgoing requests", func() {
			pending := decode[api.ListResponse[domain.IncomingRequestView]](f.do(http.MethodGet, "/v1/connections/pending", "bob", ""))
			outgoing := decode[api.ListResponse[domain.OutgoingRequestView]](f.do(http.MethodGet, "/v1/connections/outgoing", "alice", ""))

			Expect(pending.Count).To(Equal(1))
			Expect(pending.Items[0].RequesterID).To(Equal("alice"))
			Expect(outgoing.Count).To(Equal(1))
			Expect(outgoing.Items[0].RecipientID).To(Equal("bob"))
		})

		It("disconnects idempotently", func() {
			f.do(http.MethodPost, "/v1/connections/accept", "bob", `{"userId":"alice"}`)

			Expect(f.do(http.MethodDelete, "/v1/connections/bob", "alice", "").Code).To(Equal(http.StatusOK))
			Expect(f.do(http.MethodDelete, "/v1/connections/bob", "alice", "").Code).To(Equal(http.StatusOK))

			status := decode[api.StatusResponse](f.do(http.MethodGet, "/v1/connections/status/alice", "bob", ""))
			Expect(status.Status).To(Equal(domain.StatusNone))
		})
	})

	Describe("users", func() {
		It("returns a profile with the connection status by id or email", func() {
			f.do(http.MethodPost, "/v1/connections/requests", "bob", `{"userId":"alice"}`)

			byID := decode[domain.UserProfileView](f.do(http.MethodGet, "/v1/users/alice", "bob", ""))
			byEmail := decode[domain.UserProfileView](f.do(http.MethodGet, "/v1/users/alice@example.com", "bob", ""))

			Expect(byID.Name).To(Equal("Alice"))
			Expect(byID.Status).To(Equal(domain.StatusPendingSent))
			Expect(byEmail.ID).To(Equal("alice"))
		})

		It("returns 404 for an unknown user", func() {
			recorder := f.do(http.MethodGet, "/v1/users/ghost", "bob", "")

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(recorder)).To(Equal("PROFILE_NOT_FOUND"))
		})

		It("hides a private user's connections from others", func() {
			recorder := f.do(http.MethodGet, "/v1/users/carol/connections", "bob", "")

			Expect(recorder.Code).To(Equal(http.StatusForbidden))
			Expect(errorCode(recorder)).To(Equal("PRIVATE_PROFILE"))
		})

		It("shows a private user their own connections", func() {
			recorder := f.do(http.MethodGet, "/v1/users/carol/connections", "carol", "")

			Expect(recorder.Code).To(Equal(http.StatusOK))
		})
	})

	It("maps store failures to 503 without leaking the cause", func() {
		// ARRANGE
		f.edges.FailOn(repositories.OpGet, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

		// ACT
		recorder := f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"bob"}`)

		// ASSERT
		Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
		body := decode[api.ErrorResponse](recorder)
		Expect(body.Error.Code).To(Equal("STORE_UNAVAILABLE"))
		Expect(body.Error.Message).NotTo(ContainSubstring("10.0.0.1"))
	})

	Describe("profile source failures", func() {
		It("answers 503 for a user's connections when the profile lookup fails", func() {
			// ARRANGE
			f.profiles.FailFor("bob", errors.New("dial tcp 10.0.0.2:5432: connection refused"))

			// ACT
			recorder := f.do(http.MethodGet, "/v1/users/bob/connections", "alice", "")

			// ASSERT
			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
			body := decode[api.ErrorResponse](recorder)
			Expect(body.Error.Code).To(Equal("STORE_UNAVAILABLE"))
			Expect(body.Error.Message).NotTo(ContainSubstring("10.0.0.2"))
		})

		It("answers 503 for a profile when the lookup fails", func() {
			f.profiles.FailFor("bob", errors.New("connection refused"))

			recorder := f.do(http.MethodGet, "/v1/users/bob", "alice", "")

			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(errorCode(recorder)).To(Equal("STORE_UNAVAILABLE"))
		})
	})

	It("rejects a path id that is not valid UTF-8 before the store", func() {
		// ACT
		recorder := f.do(http.MethodGet, "/v1/connections/status/%FF", "alice", "")

		// ASSERT
		Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(recorder)).To(Equal("INVALID_USER_ID"))
		Expect(f.edges.Calls(repositories.OpGet)).To(BeZero())
	})

	Describe("healthz", func() {
		It("reports ok when every check passes", func() {
			f = newAPIFixture(api.ServerConfig{}, api.HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }})

			recorder := f.do(http.MethodGet, "/healthz", "", "")

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(decode[api.HealthResponse](recorder).Checks).To(HaveKeyWithValue("postgres", "ok"))
		})

		It("reports degraded when a check fails", func() {
			f = newAPIFixture(api.ServerConfig{},
				api.HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
				api.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("timeout") }},
			)

			recorder := f.do(http.MethodGet, "/healthz", "", "")

			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
			body := decode[api.HealthResponse](recorder)
			Expect(body.Status).To(Equal("degraded"))
			Expect(body.Checks).To(HaveKeyWithValue("redis", "unavailable"))
		})
	})

	It("rate limits mutations per user", func() {
		// ARRANGE
		f = newAPIFixture(api.ServerConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})
		f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"bob"}`)
		f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"carol"}`)

		// ACT
		limited := f.do(http.MethodPost, "/v1/connections/requests", "alice", `{"userId":"bob"}`)
		otherUser := f.do(http.MethodPost, "/v1/connections/requests", "bob", `{"userId":"carol"}`)
		read := f.do(http.MethodGet, "/v1/connections", "alice", "")

		// ASSERT
		Expect(limited.Code).To(Equal(http.StatusTooManyRequests))
		Expect(errorCode(limited)).To(Equal("RATE_LIMITED"))
		Expect(otherUser.Code).To(Equal(http.StatusCreated))
		Expect(read.Code).To(Equal(http.StatusOK))
	})
})
