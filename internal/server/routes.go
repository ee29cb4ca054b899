package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danmuck/wmicctl"
	"github.com/danmuck/wmicctl/internal/auth"
	"github.com/danmuck/wmicctl/internal/clause"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type getRequest struct {
	Where *wmicctl.Where  `json:"where"`
	Get   json.RawMessage `json:"get"`
}

type listRequest struct {
	Where *wmicctl.Where `json:"where"`
}

type callRequest struct {
	Where *wmicctl.Where  `json:"where"`
	Call  json.RawMessage `json:"call"`
}

type execRequest struct {
	Command string `json:"command"`
}

func (s *Server) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   s.querier != nil,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	guarded := auth.Middleware(s.guard)
	process := r.Group("/process")
	process.POST("/get", s.handleGet)
	process.POST("/list", s.handleList)
	process.POST("/call", guarded, s.handleCall)
	process.POST("/terminate", guarded, s.handleTerminate)
	r.POST("/exec", guarded, s.handleExec)
}

func (s *Server) handleGet(c *gin.Context) {
	var req getRequest
	if !bindJSON(c, &req) {
		return
	}
	fields, err := clause.DecodeGet(req.Get)
	if err != nil {
		s.fail(c, "get", err, "")
		return
	}
	set, err := s.querier.Get(c.Request.Context(), wmicctl.GetOptions{Where: req.Where, Get: fields})
	if err != nil {
		s.fail(c, "get", err, set.Raw)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (s *Server) handleList(c *gin.Context) {
	var req listRequest
	if !bindJSON(c, &req) {
		return
	}
	set, err := s.querier.List(c.Request.Context(), req.Where)
	if err != nil {
		s.fail(c, "list", err, set.Raw)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (s *Server) handleCall(c *gin.Context) {
	var req callRequest
	if !bindJSON(c, &req) {
		return
	}
	method, err := clause.DecodeString("call", req.Call)
	if err != nil {
		s.fail(c, "call", err, "")
		return
	}
	out, err := s.querier.Call(c.Request.Context(), wmicctl.CallOptions{Where: req.Where, Call: method})
	if err != nil {
		s.fail(c, "call", err, out)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "output": out})
}

func (s *Server) handleTerminate(c *gin.Context) {
	var req listRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := s.querier.Terminate(c.Request.Context(), req.Where)
	if err != nil {
		s.fail(c, "terminate", err, out)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "output": out})
}

func (s *Server) handleExec(c *gin.Context) {
	var req execRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := s.querier.Execute(c.Request.Context(), req.Command)
	if err != nil {
		s.fail(c, "exec", err, out)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "output": out})
}

// bindJSON decodes an optional JSON body into out. An empty body leaves
// out at its zero value.
func bindJSON(c *gin.Context, out any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("read body: %v", err)})
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, operation string, err error, output string) {
	status := statusFor(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Str("server", s.ID).
		Str("operation", operation).
		Int("status", status).
		Err(err).
		Msg("process operation failed")

	body := gin.H{"error": err.Error(), "outcome": wmicctl.Outcome(err)}
	if output != "" {
		body["output"] = output
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, wmicctl.ErrInvalidArgument),
		errors.Is(err, wmicctl.ErrEmptyCollection),
		errors.Is(err, wmicctl.ErrInvalidOperator),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return http.StatusBadRequest
	case errors.Is(err, wmicctl.ErrNoInstances):
		return http.StatusNotFound
	case errors.Is(err, wmicctl.ErrToolFailure), errors.Is(err, wmicctl.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
