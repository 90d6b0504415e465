// Package httpapi exposes notifiers as autotask webhooks.
//
//	GET  /health            liveness
//	POST /autotasks/:name   run the named handler on an invocation payload
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autotask-relay/internal/domain/model"
	"autotask-relay/internal/domain/ports"
)

// RequestIDHeader carries the id assigned to each inbound request.
const RequestIDHeader = "X-Request-Id"

// maxBodyBytes bounds inbound invocation payloads.
const maxBodyBytes = 1 << 20

// NotifierLookup resolves a handler name to its notifier.
type NotifierLookup interface {
	Lookup(name string) (ports.Notifier, bool)
}

// Server translates HTTP requests into notifier invocations.
type Server struct {
	notifiers NotifierLookup
	secrets   map[string]string
	logger    ports.Logger
}

// New creates a Server. defaultSecrets fill in secrets the payload does not carry.
func New(notifiers NotifierLookup, defaultSecrets map[string]string, logger ports.Logger) *Server {
	return &Server{
		notifiers: notifiers,
		secrets:   defaultSecrets,
		logger:    logger,
	}
}

// Handler builds the gin engine serving the autotask routes.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestID())
	router.GET("/health", s.health)
	router.POST("/autotasks/:name", s.invoke)
	return router
}

type resultResponse struct {
	Index int    `json:"index"`
	Hash  string `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) invoke(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	notifier, ok := s.notifiers.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "unknown handler " + name})
		return
	}

	inv, err := decodeInvocation(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if inv != nil {
		inv.Secrets = mergeSecrets(s.secrets, inv.Secrets)
	}

	s.logger.Info(ctx, "autotask invoked", "handler", name, "request_id", c.GetString(RequestIDHeader))

	if body := inv.Body(); body != nil && len(body.Events) > 0 {
		results, err := notifier.HandleEvents(ctx, inv)
		if err != nil {
			s.fail(c, name, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": toResponses(results)})
		return
	}

	if err := notifier.Handle(ctx, inv); err != nil {
		s.fail(c, name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) fail(c *gin.Context, name string, err error) {
	status := StatusFor(err)
	s.logger.Error(c.Request.Context(), "autotask failed",
		"handler", name, "request_id", c.GetString(RequestIDHeader), "status", status, "error", err)
	c.JSON(status, gin.H{"status": "error", "error": err.Error()})
}

// StatusFor maps a notifier error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrMissingSecret):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrDeliveryFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeInvocation parses the payload. An empty body or "null" yields a nil
// invocation so the notifier reports the missing payload itself.
func decodeInvocation(r io.Reader) (*model.Invocation, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var inv *model.Invocation
	if err := dec.Decode(&inv); err != nil {
		return nil, errors.New("invalid JSON body: " + err.Error())
	}
	return inv, nil
}

// mergeSecrets overlays payload secrets on the defaults. A payload without
// secrets and no defaults stays nil.
func mergeSecrets(defaults, payload map[string]string) map[string]string {
	if len(defaults) == 0 {
		return payload
	}
	merged := make(map[string]string, len(defaults)+len(payload))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	return merged
}

func toResponses(results []model.Result) []resultResponse {
	out := make([]resultResponse, 0, len(results))
	for _, r := range results {
		resp := resultResponse{Index: r.Index, Hash: r.Hash}
		if r.Err != nil {
			resp.Error = r.Err.Error()
		}
		out = append(out, resp)
	}
	return out
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
