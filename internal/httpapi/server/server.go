package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"

	"github.com/mrapps/appdaloja/internal/httpapi/handlers"
	"github.com/mrapps/appdaloja/internal/httpapi/middleware"
	"github.com/mrapps/appdaloja/pkg/config"
	"github.com/mrapps/appdaloja/pkg/logger"
	"github.com/mrapps/appdaloja/pkg/session"
)

const shutdownTimeout = 10 * time.Second

type APIServer struct {
	config   *config.AppConfig
	router   *gin.Engine
	server   *http.Server
	handlers *handlers.Handlers
}

func NewAPIServer(cfg *config.AppConfig, sess *session.Session) *APIServer {
	if cfg.App.Environment == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(&cfg.APIServer))

	s := &APIServer{
		config:   cfg,
		router:   router,
		handlers: handlers.NewHandlers(sess),
	}

	s.setupRoutes()
	return s
}

func (s *APIServer) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(&s.config.APIServer))

	v1.GET("/status", s.handlers.GetStatus)
	v1.GET("/device", s.handlers.GetDevice)
	v1.GET("/blobs/:domain", s.handlers.GetBlob)
	v1.GET("/ads", s.handlers.ListAds)
	v1.GET("/ads/:id", s.handlers.GetAds)
	v1.GET("/snapshot", s.handlers.GetSnapshot)
}

// Handler returns the HTTP handler serving the API, traced with the global tracer
func (s *APIServer) Handler() http.Handler {
	return nethttp.Middleware(opentracing.GlobalTracer(), s.router,
		nethttp.OperationNameFunc(func(r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
}

// Start serves the API until ctx is canceled
func (s *APIServer) Start(ctx context.Context) error {
	log := logger.Logger(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.APIServer.Host, s.config.APIServer.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", s.server.Addr).Info("starting http API server")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start http API server : %w", err)
	case <-ctx.Done():
	}

	log.Info("turning down http API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during HTTP API server shutdown")
		return err
	}
	<-errCh
	log.Info("http API server stopped")
	return nil
}
