package server

import (
	"context"
	"time"

	"github.com/danmuck/wmicctl"
	"github.com/danmuck/wmicctl/internal/auth"
	"github.com/danmuck/wmicctl/internal/config"
	"github.com/danmuck/wmicctl/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// Querier is the process query surface the HTTP API exposes.
type Querier interface {
	Get(ctx context.Context, opts wmicctl.GetOptions) (wmicctl.ResultSet, error)
	List(ctx context.Context, where *wmicctl.Where) (wmicctl.ResultSet, error)
	Call(ctx context.Context, opts wmicctl.CallOptions) (string, error)
	Terminate(ctx context.Context, where *wmicctl.Where) (string, error)
	Execute(ctx context.Context, command string) (string, error)
}

var _ Querier = (*wmicctl.Client)(nil)

type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	querier Querier
	guard   auth.Validator
	router  *gin.Engine
}

// Appear builds the router with logging, metrics, CORS and rate limiting.
// Routes are added by RegisterRoutes. The routes that run commands or
// change processes require cfg.AuthToken.
func Appear(cfg config.ServerConfig, querier Querier) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.ID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", auth.TokenHeader, observability.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		ID:       cfg.ID,
		Addr:     cfg.Addr,
		Appeared: time.Now(),
		querier:  querier,
		guard:    auth.StaticToken{Token: cfg.AuthToken},
		router:   r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	log.Info().Str("id", s.ID).Str("addr", s.Addr).Msg("wmicctl api listening")
	if s.guard == (auth.StaticToken{}) {
		log.Warn().Str("id", s.ID).Msg("no auth token configured; exec, call and terminate are disabled")
	}
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
