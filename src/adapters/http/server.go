package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"socialgraph/src/domain"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type ConnectionOperations interface {
	RequestConnection(ctx context.Context, requester string, target string) error
	AcceptConnection(ctx context.Context, currentUser string, requester string) error
	IgnoreConnection(ctx context.Context, currentUser string, requester string) error
	Disconnect(ctx context.Context, currentUser string, other string) error
	ListConnections(ctx context.Context, user string) ([]domain.ConnectionView, error)
	ListPending(ctx context.Context, user string) ([]domain.IncomingRequestView, error)
	ListOutgoing(ctx context.Context, user string) ([]domain.OutgoingRequestView, error)
	ListIgnored(ctx context.Context, user string) ([]domain.IgnoredRequestView, error)
	StatusOf(ctx context.Context, currentUser string, other string) (domain.ConnectionStatus, error)
}

type ProfileOperations interface {
	GetUserProfile(ctx context.Context, viewer string, idOrEmail string) (*domain.UserProfileView, error)
	ConnectionsVisibleTo(ctx context.Context, viewer string, owner string) error
}

// HealthCheck é um ping nomeado para /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type ServerConfig struct {
	Port               int
	RequestTimeout     time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowedOrigins []string
}

// Server representa o servidor HTTP da API
type Server struct {
	logger      *zap.Logger
	server      *http.Server
	router      chi.Router
	port        int
	connections ConnectionOperations
	profiles    ProfileOperations
	sessions    *SessionProvider
	health      []HealthCheck
}

// NewServer cria uma nova instância do servidor
func NewServer(
	config ServerConfig,
	logger *zap.Logger,
	connections ConnectionOperations,
	profiles ProfileOperations,
	sessions *SessionProvider,
	health ...HealthCheck,
) *Server {
	server := &Server{
		logger:      logger.With(zap.String("component", "http_server")),
		router:      chi.NewRouter(),
		port:        config.Port,
		connections: connections,
		profiles:    profiles,
		sessions:    sessions,
		health:      health,
	}

	server.routes(config)

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      server.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return server
}

func (s *Server) routes(config ServerConfig) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(s.recoverer)
	s.router.Use(s.observe)
	s.router.Use(corsMiddleware(config.CORSAllowedOrigins))

	s.router.Get("/healthz", s.Healthz)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		if config.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(config.RequestTimeout))
		}
		r.Use(s.authenticate)

		// Rotas de Leitura
		r.Get("/connections", s.ListConnections)
		r.Get("/connections/pending", s.ListPending)
		r.Get("/connections/outgoing", s.ListOutgoing)
		r.Get("/connections/ignored", s.ListIgnored)
		r.Get("/connections/status/{userId}", s.GetConnectionStatus)
		r.Get("/users/{userId}", s.GetUserProfile)
		r.Get("/users/{userId}/connections", s.ListUserConnections)

		// Rotas de Escritas
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(config.RateLimitRequests, config.RateLimitWindow))

			r.Post("/connections/requests", s.RequestConnection)
			r.Post("/connections/accept", s.AcceptConnection)
			r.Post("/connections/ignore", s.IgnoreConnection)
			r.Delete("/connections/{userId}", s.Disconnect)
		})
	})
}

// Handler expõe o router (testes com httptest).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("server started", zap.Int("port", s.port))

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
