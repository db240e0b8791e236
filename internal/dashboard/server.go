// Package dashboard serves the process map JSON API.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/auth"
	"github.com/zulandar/processmap/internal/logger"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB          *gorm.DB
	Port        int
	Out         io.Writer
	Log         *logger.Logger
	Issuer      *auth.Issuer
	CORSOrigins []string

	// StreamInterval is how often the activity stream polls. Defaults to 3s.
	StreamInterval time.Duration
}

type server struct {
	db       *gorm.DB
	log      *logger.Logger
	issuer   *auth.Issuer
	reader   *activity.Reader
	metrics  *httpMetrics
	interval time.Duration
}

// NewRouter builds the HTTP handler without starting a listener.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("dashboard: db is required")
	}
	if opts.Issuer == nil {
		return nil, fmt.Errorf("dashboard: token issuer is required")
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = 3 * time.Second
	}

	s := &server{
		db:       opts.DB,
		log:      opts.Log.With("component", "dashboard"),
		issuer:   opts.Issuer,
		reader:   activity.NewReader(opts.DB, opts.Log),
		metrics:  newHTTPMetrics(),
		interval: opts.StreamInterval,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.log))
	router.Use(s.metrics.middleware())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	registerRoutes(router, s)
	return router, nil
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Process map API running at http://localhost:%d/api\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
