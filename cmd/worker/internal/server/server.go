package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/pkg/config"
	"github.com/gooneraki/risk-worker/pkg/models"
)

// Server exposes the worker's synchronous HTTP surface: health and info
// endpoints, the latest-price read path, and the manual update trigger.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	reader  PriceReader
	cache   PriceCache // nil when caching is disabled
	trigger Trigger
}

func New(cfg *config.Config, logger *zap.Logger, reader PriceReader, cache PriceCache, trigger Trigger) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		reader:  reader,
		cache:   cache,
		trigger: trigger,
	}
}

// Router builds the gin engine with all routes wired.
func (s *Server) Router() *gin.Engine {
	if s.cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/", s.handleRoot)
	r.HEAD("/", s.handleRoot)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secured := r.Group("/", requireWorkerSecret(s.cfg.Worker.Secret))
	secured.GET("/latest-price/:ticker", s.handleLatestPrice)
	secured.POST("/trigger-update/:ticker", s.handleTriggerUpdate)

	return r
}

// requireWorkerSecret gates server-to-server endpoints on a shared secret.
func requireWorkerSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Worker-Secret") != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "risk-worker"})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "risk-worker",
		"description": "Background worker for processing ticker price updates",
		"endpoints": gin.H{
			"health":       "/healthz",
			"metrics":      "/metrics",
			"latest_price": "/latest-price/{ticker}",
			"trigger":      "/trigger-update/{ticker}",
		},
		"status": "running",
	})
}

// handleLatestPrice is the read-through path: cache first, then the
// store. A cache miss is never "no price exists"; only an empty store is.
func (s *Server) handleLatestPrice(c *gin.Context) {
	ticker := normalizeTicker(c.Param("ticker"))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ticker is required"})
		return
	}

	if s.cache != nil {
		if price, ok := s.cache.Get(c.Request.Context(), ticker); ok {
			c.JSON(http.StatusOK, gin.H{"ticker": ticker, "price": price, "source": "cache"})
			return
		}
	}

	observation, err := s.reader.LatestPrice(c.Request.Context(), ticker)
	if err != nil {
		s.logger.Error("Failed to read latest price", zap.String("ticker", ticker), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	if observation == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No price data found for " + ticker})
		return
	}

	if s.cache != nil {
		s.cache.Set(c.Request.Context(), ticker, observation.Price)
	}
	c.JSON(http.StatusOK, observation)
}

// handleTriggerUpdate synthesizes an add-event and runs the pipeline
// synchronously, reporting how far it got.
func (s *Server) handleTriggerUpdate(c *gin.Context) {
	ticker := normalizeTicker(c.Param("ticker"))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ticker is required"})
		return
	}

	s.logger.Info("Manual trigger", zap.String("ticker", ticker))
	outcome := s.trigger.Process(c.Request.Context(), models.TickerEvent{
		Ticker: ticker,
		Action: models.ActionAdd,
	})

	status := http.StatusOK
	switch outcome {
	case models.OutcomeFetchFailed:
		status = http.StatusBadGateway
	case models.OutcomeWritesFailed:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{
		"message": "Update triggered for " + ticker,
		"ticker":  ticker,
		"outcome": outcome.String(),
	})
}

func normalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
