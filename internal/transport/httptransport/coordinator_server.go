package httptransport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kvlabs/ordcast/internal/coordinator"
	"github.com/kvlabs/ordcast/internal/logging"
	"github.com/kvlabs/ordcast/pkg/ordcast/core"
)

// CoordinatorServer exposes the coordinator's single client-facing
// endpoint: accept a write, dispatch it to a random worker, and
// relay back whatever that worker reported.
type CoordinatorServer struct {
	dispatcher *coordinator.Dispatcher
	log        logging.Logger
	router     *gin.Engine
}

// NewCoordinatorServer builds the gin router for a coordinator
// process backed by dispatcher.
func NewCoordinatorServer(dispatcher *coordinator.Dispatcher, log logging.Logger) *CoordinatorServer {
	gin.SetMode(gin.ReleaseMode)
	s := &CoordinatorServer{dispatcher: dispatcher, log: log, router: gin.New()}
	s.router.Use(s.requestLogger(), s.recovery())
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/write", s.handleWrite)
	return s
}

// Router returns the underlying gin engine, for http.Server wiring.
func (s *CoordinatorServer) Router() *gin.Engine {
	return s.router
}

func (s *CoordinatorServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if s.log != nil {
			s.log.Infof("%s %s | %d | %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		}
	}
}

func (s *CoordinatorServer) recovery() gin.HandlerFunc {
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

func (s *CoordinatorServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *CoordinatorServer) handleWrite(c *gin.Context) {
	var req core.WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := s.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
