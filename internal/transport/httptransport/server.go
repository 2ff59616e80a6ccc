package httptransport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/pkg/ordcast/core"
	"github.com/kvlabs/ordcast/pkg/ordcast/store"
)

// Server exposes a Node's client-facing write endpoint and its two
// peer-facing endpoints (broadcast-write, ack) as JSON over HTTP,
// grouped the way ppriyankuu-godkv's api.Handler groups public vs.
// internal routes.
type Server struct {
	node   *core.Node
	store  *store.Store
	log    logging.Logger
	router *gin.Engine
}

// NewServer builds the gin router for node, backed by st for the read
// path.
func NewServer(node *core.Node, st *store.Store, log logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{node: node, store: st, log: log, router: gin.New()}
	s.router.Use(s.requestLogger(), s.recovery())
	s.registerRoutes()
	return s
}

// Router returns the underlying gin engine, for http.Server wiring.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/kv/:key", s.handleGet)
	s.router.POST("/write", s.handleClientWrite)

	internal := s.router.Group("/internal")
	internal.POST("/broadcast-write", s.handleBroadcastWrite)
	internal.POST("/ack", s.handleAck)
}

// requestLogger mirrors ppriyankuu-godkv's api.Logger middleware, but
// structured through this node's injected Logger instead of stdlib log.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if s.log != nil {
			s.log.Infof("%s %s | %d | %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		}
	}
}

// recovery mirrors ppriyankuu-godkv's api.Recovery middleware.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if s.log != nil {
					s.log.Errorf("panic recovered: %v", r)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "node": s.node.ID})
}

func (s *Server) handleGet(c *gin.Context) {
	key := c.Param("key")
	v, ok := s.store.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": v})
}

func (s *Server) handleClientWrite(c *gin.Context) {
	var req core.WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.node.OnClientWrite(c.Request.Context(), req.Mode, req.Key, req.Value))
}

func (s *Server) handleBroadcastWrite(c *gin.Context) {
	var msg core.WriteBroadcast
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.node.OnBroadcastWrite(c.Request.Context(), msg))
}

func (s *Server) handleAck(c *gin.Context) {
	var msg core.AckRequest
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.node.OnAck(msg))
}
