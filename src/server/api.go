package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"spot-observer/src/config"
	"spot-observer/src/helpers"
	"spot-observer/src/logger"
	"spot-observer/src/models"
	"spot-observer/src/service"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config    *config.Config
	Dashboard *service.Dashboard
	Logger    *logger.Logger
	engine    *gin.Engine
	http      *http.Server

	// WebSocket clients, owned by the hub goroutine
	clients    map[*Client]struct{}
	broadcast  chan *models.MLatestData
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	quit       chan struct{}
	hubOnce    sync.Once
	hubRunning atomic.Bool
	stopOnce   sync.Once

	// Merged view of every published snapshot
	latestState *models.MLatestData
	connections int
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *config.Config, dash *service.Dashboard, log *logger.Logger) *APIServer {
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.NewLogger(cfg.MConfig, "APIServer")
	}

	s := &APIServer{
		Config:     cfg,
		Dashboard:  dash,
		Logger:     log,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		quit:       make(chan struct{}),
		latestState: &models.MLatestData{
			Type:    "INITIAL",
			Sources: dash.Summaries(),
		},
	}

	s.engine.Use(gin.Recovery(), corsMiddleware)
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

func corsMiddleware(c *gin.Context) {
	origin := c.Request.Header.Get("Origin")
	if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
	}
	c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)
	api.GET("/sources", s.getSources)
	api.POST("/sources/:source/refresh", s.postRefresh)
	api.GET("/snapshots/:source", s.getSnapshot)

	api.GET("/prices/summary", s.getPriceSummary)
	api.GET("/prices/average", s.getAveragePrice)
	api.GET("/prices/daily", s.getDailyReport)

	api.GET("/grid/renewables", s.getRenewables)
	api.GET("/grid/net", s.getNetImportExport)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and serves HTTP until Stop is called.
func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.startHub()

	s.stateMutex.Lock()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.stateMutex.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *APIServer) startHub() {
	s.hubOnce.Do(func() {
		s.hubRunning.Store(true)
		go s.handleWebsockets()
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)

		s.stateMutex.RLock()
		srv := s.http
		s.stateMutex.RUnlock()
		if srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = srv.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := s.connections
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	intervals := make(map[string]string, len(s.Config.Sources))
	for _, src := range s.Config.Sources {
		intervals[src.ID] = config.Interval(src).String()
	}
	c.JSON(http.StatusOK, gin.H{
		"timezone":    s.Config.Location().String(),
		"default_vat": int(s.Config.DefaultRegime()),
		"intervals":   intervals,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSources(c *gin.Context) {
	c.JSON(http.StatusOK, s.Dashboard.Sources())
}

// -----------------------------------------------------------------------------

func (s *APIServer) postRefresh(c *gin.Context) {
	id, ok := sourceParam(c)
	if !ok {
		return
	}
	if err := s.Dashboard.Refresh(c.Request.Context(), id, true); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": helpers.Kind(err)})
		return
	}
	snap, err := s.Dashboard.Snapshot(c.Request.Context(), id, false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Summarize(snap))
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSnapshot(c *gin.Context) {
	id, ok := sourceParam(c)
	if !ok {
		return
	}
	snap, err := s.Dashboard.Snapshot(c.Request.Context(), id, queryBool(c, "refresh"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPriceSummary(c *gin.Context) {
	regime, ok := s.regime(c)
	if !ok {
		return
	}
	summary, err := s.Dashboard.PriceSummary(c.Request.Context(), s.Dashboard.Now(), regime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getAveragePrice(c *gin.Context) {
	regime, ok := s.regime(c)
	if !ok {
		return
	}
	loc := s.Config.Location()
	from, err := parseTime(c.Query("from"), loc)
	if err != nil {
		badRequest(c, "from", err)
		return
	}
	to, err := parseTime(c.Query("to"), loc)
	if err != nil {
		badRequest(c, "to", err)
		return
	}
	if !from.Before(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
		return
	}

	business := queryBool(c, "business")
	var avg float64
	if business {
		avg, err = s.Dashboard.BusinessDayAverage(from, to, regime)
	} else {
		avg, err = s.Dashboard.AveragePrice(from, to, regime)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{
		"from":    from,
		"to":      to,
		"vat":     int(regime),
		"average": avg,
	}
	if business {
		resp["business_days"] = s.Dashboard.BusinessDays(from, to)
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getDailyReport(c *gin.Context) {
	regime, ok := s.regime(c)
	if !ok {
		return
	}
	day, ok := s.day(c)
	if !ok {
		return
	}
	report, err := s.Dashboard.DailyReport(day, regime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getRenewables(c *gin.Context) {
	points, err := s.Dashboard.Renewables()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getNetImportExport(c *gin.Context) {
	day, ok := s.day(c)
	if !ok {
		return
	}
	total, err := s.Dashboard.NetImportExport(day)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"day":   day.Format(time.DateOnly),
		"total": total,
	})
}
